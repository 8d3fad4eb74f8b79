package export_test

import (
	"context"

	"github.com/edutools/lms-export/internal"
	"github.com/edutools/lms-export/internal/export"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveRoles", func() {
	var (
		store *mockStore
		ctx   context.Context
	)

	BeforeEach(func() {
		store = newMockStore()
		store.addRole(1, "manager")
		store.addRole(2, "editingteacher")
		store.addRole(3, "student")
		store.addRole(4, "guest")
		store.addRole(5, "frontpage")
		store.addRole(6, "admin")
		ctx = context.Background()
	})

	Context("requesting all roles", func() {
		It("excludes the reserved system roles", func() {
			roles, err := export.ResolveRoles(ctx, store, "all")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles.Requested()).To(Equal([]string{"manager", "editingteacher", "student"}))
		})

		It("keeps the registry ids for every role", func() {
			roles, err := export.ResolveRoles(ctx, store, "all")
			Expect(err).NotTo(HaveOccurred())

			id, ok := roles.ID("editingteacher")
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(int64(2)))
		})
	})

	Context("requesting an explicit list", func() {
		It("resolves known roles in request order", func() {
			roles, err := export.ResolveRoles(ctx, store, "student,manager")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles.Requested()).To(Equal([]string{"student", "manager"}))
		})

		It("trims whitespace around entries", func() {
			roles, err := export.ResolveRoles(ctx, store, " student , manager ")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles.Requested()).To(Equal([]string{"student", "manager"}))
		})

		It("fails the whole request on one unknown role", func() {
			roles, err := export.ResolveRoles(ctx, store, "student,nosuchrole")
			Expect(err).To(MatchError(internal.ErrInvalidRole))
			Expect(roles.Empty()).To(BeTrue())
		})

		It("can request a reserved role explicitly", func() {
			roles, err := export.ResolveRoles(ctx, store, "guest")
			Expect(err).NotTo(HaveOccurred())
			Expect(roles.Requested()).To(Equal([]string{"guest"}))
		})
	})

	It("marks a zero value RoleSet as unresolved", func() {
		var roles export.RoleSet
		Expect(roles.Empty()).To(BeTrue())
	})
})
