// Package storagetest holds the behavior every storage.Driver must satisfy,
// written as shared ginkgo specs.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/storage"
)

// DriverSpecs registers the conformance specs. newDriver is called before
// each spec; the returned driver is closed afterwards.
func DriverSpecs(newDriver func() storage.Driver) {
	var (
		ctx     context.Context
		driver  storage.Driver
		session string
	)

	turn := func(role, content string) llm.ChatTurn {
		return llm.ChatTurn{
			SessionID: session,
			Role:      role,
			Content:   content,
			CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		session = "session-" + uuid.NewString()
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("returns an empty history for an unknown session", func() {
		turns, err := driver.History(ctx, session, storage.MaxHistory)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("returns turns oldest first", func() {
		Expect(driver.Append(ctx, turn(llm.RoleUser, "make a blog"))).To(Succeed())
		Expect(driver.Append(ctx, turn(llm.RoleAssistant, "<html>blog</html>"))).To(Succeed())
		Expect(driver.Append(ctx, turn(llm.RoleUser, "add a footer"))).To(Succeed())

		turns, err := driver.History(ctx, session, storage.MaxHistory)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(3))
		Expect(turns[0].Content).To(Equal("make a blog"))
		Expect(turns[1].Role).To(Equal(llm.RoleAssistant))
		Expect(turns[2].Content).To(Equal("add a footer"))
		Expect(turns[2].SessionID).To(Equal(session))
	})

	It("returns only the most recent turns when limited", func() {
		for i := range 60 {
			Expect(driver.Append(ctx, turn(llm.RoleUser, fmt.Sprintf("turn %d", i)))).To(Succeed())
		}

		turns, err := driver.History(ctx, session, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(5))
		Expect(turns[0].Content).To(Equal("turn 55"))
		Expect(turns[4].Content).To(Equal("turn 59"))

		turns, err = driver.History(ctx, session, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(storage.MaxHistory))
		Expect(turns[0].Content).To(Equal("turn 10"))
	})

	It("keeps sessions isolated", func() {
		Expect(driver.Append(ctx, turn(llm.RoleUser, "mine"))).To(Succeed())

		other, err := driver.History(ctx, session+"-other", storage.MaxHistory)
		Expect(err).NotTo(HaveOccurred())
		Expect(other).To(BeEmpty())
	})

	It("rejects a turn without a session id", func() {
		t := turn(llm.RoleUser, "x")
		t.SessionID = ""
		Expect(errors.Is(driver.Append(ctx, t), storage.ErrEmptySession)).To(BeTrue())
	})

	It("rejects a system turn", func() {
		err := driver.Append(ctx, turn(llm.RoleSystem, "never persisted"))
		var roleErr storage.InvalidRoleError
		Expect(errors.As(err, &roleErr)).To(BeTrue())
	})

	It("accepts concurrent appends", func() {
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				Expect(driver.Append(ctx, turn(llm.RoleUser, fmt.Sprintf("c%d", i)))).To(Succeed())
			}()
		}
		wg.Wait()

		turns, err := driver.History(ctx, session, storage.MaxHistory)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(20))
	})
}
