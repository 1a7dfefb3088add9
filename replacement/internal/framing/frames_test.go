package framing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FrameTable", func() {
	var (
		table *frameTableImpl
	)

	BeforeEach(func() {
		table = NewFrameTable(3).(*frameTableImpl)
	})

	It("should start empty", func() {
		Expect(table.Occupied()).To(Equal(0))
		Expect(table.Capacity()).To(Equal(3))
		Expect(table.IsFull()).To(BeFalse())
		Expect(table.Resident()).To(BeEmpty())
	})

	It("should place pages into consecutive frames", func() {
		Expect(table.Place(7)).To(Equal(Residency{Frame: 0, Page: 7}))
		Expect(table.Place(3)).To(Equal(Residency{Frame: 1, Page: 3}))
		Expect(table.Place(9)).To(Equal(Residency{Frame: 2, Page: 9}))

		Expect(table.IsFull()).To(BeTrue())
		Expect(table.Resident()).To(Equal([]Residency{
			{Frame: 0, Page: 7},
			{Frame: 1, Page: 3},
			{Frame: 2, Page: 9},
		}))
	})

	It("should lookup resident pages", func() {
		table.Place(7)
		table.Place(3)

		entry, ok := table.Lookup(3)

		Expect(ok).To(BeTrue())
		Expect(entry).To(Equal(Residency{Frame: 1, Page: 3}))
	})

	It("should report a miss for pages that are not resident", func() {
		table.Place(7)

		entry, ok := table.Lookup(8)

		Expect(ok).To(BeFalse())
		Expect(entry).To(BeZero())
	})

	It("should reuse the frame of the replaced page", func() {
		table.Place(7)
		table.Place(3)

		entry := table.Replace(0, 5)

		Expect(entry).To(Equal(Residency{Frame: 0, Page: 5}))
		_, ok := table.Lookup(7)
		Expect(ok).To(BeFalse())
		Expect(table.Occupied()).To(Equal(2))
	})

	It("should panic when placing into a full table", func() {
		table.Place(1)
		table.Place(2)
		table.Place(3)

		Expect(func() { table.Place(4) }).To(Panic())
	})

	It("should panic when a page would occupy two frames", func() {
		table.Place(1)
		table.Place(2)

		Expect(func() { table.Place(1) }).To(Panic())
		Expect(func() { table.Replace(0, 2) }).To(Panic())
	})

	It("should panic when replacing an unused frame", func() {
		table.Place(1)

		Expect(func() { table.Replace(2, 4) }).To(Panic())
	})

	It("should reset", func() {
		table.Place(1)
		table.Place(2)

		table.Reset()

		Expect(table.Occupied()).To(Equal(0))
		_, ok := table.Lookup(1)
		Expect(ok).To(BeFalse())
	})
})
