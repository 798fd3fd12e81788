package cqueue

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IntQueue", func() {
	var q *IntQueue

	BeforeEach(func() {
		q = New(3)
	})

	It("should report capacity and occupancy", func() {
		Expect(q.Max()).To(Equal(3))
		Expect(q.Len()).To(Equal(0))
		Expect(q.Available()).To(Equal(3))
		Expect(q.Any()).To(BeFalse())
		Expect(q.Full()).To(BeFalse())
	})

	It("should pop values in insertion order", func() {
		Expect(q.Put(10)).To(Succeed())
		Expect(q.Put(20)).To(Succeed())
		Expect(q.Put(30)).To(Succeed())

		Expect(q.Peek()).To(Equal(10))

		Expect(q.Get()).To(Equal(10))
		Expect(q.Get()).To(Equal(20))
		Expect(q.Get()).To(Equal(30))
		Expect(q.Any()).To(BeFalse())
	})

	It("should reject a put at capacity and leave contents intact", func() {
		Expect(q.Put(1)).To(Succeed())
		Expect(q.Put(2)).To(Succeed())
		Expect(q.Put(3)).To(Succeed())
		Expect(q.Full()).To(BeTrue())

		Expect(q.Put(4)).To(MatchError(ErrFull))
		Expect(q.Len()).To(Equal(3))

		Expect(q.Get()).To(Equal(1))
		Expect(q.Get()).To(Equal(2))
		Expect(q.Get()).To(Equal(3))
	})

	It("should fail to get from an empty queue", func() {
		_, err := q.Get()
		Expect(err).To(MatchError(ErrEmpty))

		_, err = q.Peek()
		Expect(err).To(MatchError(ErrEmpty))
	})

	It("should wrap around the ring", func() {
		for round := 0; round < 5; round++ {
			Expect(q.Put(round)).To(Succeed())
			Expect(q.Put(round + 100)).To(Succeed())
			Expect(q.Get()).To(Equal(round))
			Expect(q.Get()).To(Equal(round + 100))
		}
		Expect(q.Len()).To(Equal(0))
	})

	It("should clear without changing capacity", func() {
		Expect(q.Put(7)).To(Succeed())
		q.Clear()

		Expect(q.Len()).To(Equal(0))
		Expect(q.Max()).To(Equal(3))
		Expect(q.Any()).To(BeFalse())

		// clearing twice is the same as clearing once
		q.Clear()
		Expect(q.Len()).To(Equal(0))

		Expect(q.Put(8)).To(Succeed())
		Expect(q.Get()).To(Equal(8))
	})

	It("should panic on a non-positive capacity", func() {
		Expect(func() { New(0) }).To(Panic())
	})
})
