package export_test

import (
	"context"

	"github.com/edutools/lms-export/internal"
	"github.com/edutools/lms-export/internal/export"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CategoryPathResolver", func() {
	var (
		store    *mockStore
		resolver *export.CategoryPathResolver
		ctx      context.Context
	)

	BeforeEach(func() {
		store = newMockStore()
		resolver = export.NewCategoryPathResolver(store)
		ctx = context.Background()
	})

	Context("with a three level chain A -> B -> C", func() {
		BeforeEach(func() {
			store.addCategory(1, "A", 0)
			store.addCategory(2, "B", 1)
			store.addCategory(3, "C", 2)
		})

		It("joins names root to leaf", func() {
			path, err := resolver.Resolve(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("A / B / C"))
		})

		It("resolves a top level category to its own name", func() {
			path, err := resolver.Resolve(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("A"))
		})

		It("caches resolved paths across calls", func() {
			_, err := resolver.Resolve(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			calls := store.categoryCalls

			path, err := resolver.Resolve(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("A / B / C"))
			Expect(store.categoryCalls).To(Equal(calls))
		})
	})

	It("resolves the root sentinel to an empty path", func() {
		path, err := resolver.Resolve(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeEmpty())
	})

	It("fails on a parent chain cycle instead of hanging", func() {
		store.addCategory(1, "A", 2)
		store.addCategory(2, "B", 1)

		_, err := resolver.Resolve(ctx, 1)
		Expect(err).To(MatchError(internal.ErrMalformedCategoryTree))
	})

	It("fails when a parent link points at a missing category", func() {
		store.addCategory(1, "A", 99)

		_, err := resolver.Resolve(ctx, 1)
		Expect(err).To(MatchError(internal.ErrCategoryNotFound))
	})
})
