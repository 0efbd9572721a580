package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/storage"
	"github.com/papercomputeco/sitesmith/pkg/storage/inmemory"
	"github.com/papercomputeco/sitesmith/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.DriverSpecs(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("returns a copy the caller cannot mutate", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.Append(ctx, llm.ChatTurn{SessionID: "s", Role: llm.RoleUser, Content: "a"})).To(Succeed())

		turns, _ := d.History(ctx, "s", storage.MaxHistory)
		turns[0].Content = "changed"

		again, _ := d.History(ctx, "s", storage.MaxHistory)
		Expect(again[0].Content).To(Equal("a"))
		Expect(d.Sessions()).To(Equal(1))
	})
})
