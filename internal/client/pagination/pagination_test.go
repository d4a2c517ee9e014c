package pagination_test

import (
	"github.com/dmitrijs2005/useradmin/internal/client/pagination"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Controller", func() {
	var c *pagination.Controller

	BeforeEach(func() {
		var err error
		c, err = pagination.New(pagination.DefaultPageSize)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("rejects non-positive page sizes", func() {
			_, err := pagination.New(0)
			Expect(err).To(MatchError(pagination.ErrInvalidPageSize))
		})
	})

	Describe("page window", func() {
		It("reports items 11-20 of 25 on the second page", func() {
			c.SetTotal(25)
			Expect(c.GoTo(1)).To(Succeed())

			Expect(c.PageNumber()).To(Equal(2))
			Expect(c.TotalPages()).To(Equal(3))
			Expect(c.FirstItemOrdinal()).To(Equal(11))
			Expect(c.LastItemOrdinal()).To(Equal(20))
			Expect(c.HasNext()).To(BeTrue())
			Expect(c.HasPrevious()).To(BeTrue())
			Expect(c.HasFirst()).To(BeTrue())
			Expect(c.HasLast()).To(BeTrue())
		})

		It("clips the last page to the total", func() {
			c.SetTotal(25)
			Expect(c.Last()).To(BeTrue())
			Expect(c.PageIndex()).To(Equal(2))
			Expect(c.FirstItemOrdinal()).To(Equal(21))
			Expect(c.LastItemOrdinal()).To(Equal(25))
			Expect(c.HasNext()).To(BeFalse())
			Expect(c.Next()).To(BeFalse())
		})

		It("handles an empty collection", func() {
			c.SetTotal(0)
			Expect(c.TotalPages()).To(Equal(0))
			Expect(c.FirstItemOrdinal()).To(Equal(0))
			Expect(c.LastItemOrdinal()).To(Equal(0))
			Expect(c.HasNext()).To(BeFalse())
			Expect(c.HasPrevious()).To(BeFalse())
			Expect(c.GoTo(0)).To(Succeed())
			Expect(c.PageNumbers()).To(BeEmpty())
		})

		It("treats a negative total as zero", func() {
			c.SetTotal(-3)
			Expect(c.Total()).To(Equal(0))
		})

		DescribeTable("invariants hold for every window",
			func(pageIndex, pageSize, total int) {
				Expect(c.SetPageSize(pageSize)).To(Succeed())
				c.SetTotal(total)
				if pageIndex > 0 {
					Expect(c.GoTo(pageIndex)).To(Succeed())
				}

				Expect(c.TotalPages()).To(Equal((total + pageSize - 1) / pageSize))
				Expect(c.FirstItemOrdinal()).To(BeNumerically("<=", c.LastItemOrdinal()))
				Expect(c.LastItemOrdinal()).To(BeNumerically("<=", total))
			},
			Entry("empty", 0, 10, 0),
			Entry("single item", 0, 5, 1),
			Entry("exact fit", 1, 5, 10),
			Entry("partial last page", 4, 25, 101),
			Entry("one page", 0, 100, 99),
			Entry("many pages", 17, 5, 90),
		)
	})

	Describe("navigation", func() {
		BeforeEach(func() {
			c.SetTotal(95)
		})

		It("moves forward and back", func() {
			Expect(c.Previous()).To(BeFalse())
			Expect(c.First()).To(BeFalse())
			Expect(c.Next()).To(BeTrue())
			Expect(c.Next()).To(BeTrue())
			Expect(c.PageIndex()).To(Equal(2))
			Expect(c.Previous()).To(BeTrue())
			Expect(c.PageIndex()).To(Equal(1))
			Expect(c.First()).To(BeTrue())
			Expect(c.PageIndex()).To(Equal(0))
		})

		It("rejects pages outside the range", func() {
			Expect(c.GoTo(-1)).To(MatchError(pagination.ErrPageOutOfRange))
			Expect(c.GoTo(10)).To(MatchError(pagination.ErrPageOutOfRange))
			Expect(c.GoTo(9)).To(Succeed())
		})

		It("resets to the first page whenever the page size changes", func() {
			Expect(c.GoTo(5)).To(Succeed())
			Expect(c.SetPageSize(25)).To(Succeed())
			Expect(c.PageIndex()).To(Equal(0))

			Expect(c.GoTo(3)).To(Succeed())
			Expect(c.SetPageSize(25)).To(Succeed())
			Expect(c.PageIndex()).To(Equal(0))
		})

		It("keeps the page when the new size is invalid", func() {
			Expect(c.GoTo(5)).To(Succeed())
			Expect(c.SetPageSize(-1)).To(MatchError(pagination.ErrInvalidPageSize))
			Expect(c.PageIndex()).To(Equal(5))
			Expect(c.PageSize()).To(Equal(10))
		})
	})

	Describe("PageNumbers", func() {
		DescribeTable("windows of at most five buttons",
			func(total, pageIndex int, want []int) {
				c.SetTotal(total)
				Expect(c.GoTo(pageIndex)).To(Succeed())
				Expect(c.PageNumbers()).To(Equal(want))
			},
			Entry("start of a long list", 100, 0, []int{0, 1, 2, 3, 4}),
			Entry("still anchored at the start", 100, 2, []int{0, 1, 2, 3, 4}),
			Entry("centered", 100, 5, []int{3, 4, 5, 6, 7}),
			Entry("centered just before the tail", 100, 6, []int{4, 5, 6, 7, 8}),
			Entry("anchored at the end", 100, 7, []int{5, 6, 7, 8, 9}),
			Entry("last page", 100, 9, []int{5, 6, 7, 8, 9}),
			Entry("fewer pages than buttons", 30, 2, []int{0, 1, 2}),
			Entry("four pages at the end", 40, 3, []int{0, 1, 2, 3}),
		)

		It("shows the strip only when pages exceed the window", func() {
			c.SetTotal(50)
			Expect(c.ShowPageStrip()).To(BeFalse())
			c.SetTotal(51)
			Expect(c.ShowPageStrip()).To(BeTrue())
		})
	})

	Describe("IsPageSizeChoice", func() {
		It("accepts only the offered sizes", func() {
			for _, n := range pagination.PageSizes {
				Expect(pagination.IsPageSizeChoice(n)).To(BeTrue())
			}
			Expect(pagination.IsPageSizeChoice(7)).To(BeFalse())
		})
	})
})
