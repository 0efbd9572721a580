package ratelimit_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/ratelimit"
)

var _ = Describe("FallbackStore", func() {
	It("falls back to memory and holds the breaker open for 30s", func() {
		ctx := context.Background()
		primary := &failingStore{}
		memory := ratelimit.NewMemoryStore()
		store := ratelimit.NewFallbackStore(primary, memory, nil)
		now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

		res, err := store.Admit(ctx, "c", 1, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
		Expect(primary.calls).To(Equal(1))

		res, err = store.Admit(ctx, "c", 1, time.Hour, now.Add(10*time.Second))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(primary.calls).To(Equal(1))

		_, _ = store.Admit(ctx, "c", 1, time.Hour, now.Add(31*time.Second))
		Expect(primary.calls).To(Equal(2))
	})
})
