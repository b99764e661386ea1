package box_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
)

type countingWeight struct {
	calls int
}

func (w *countingWeight) Value(b *box.Box) float64 {
	w.calls++
	return b.CPairSet().R2(0, 1)
}

var _ = Describe("Box trial protocol", func() {
	var (
		b    *box.Box
		mols []*box.Molecule
	)

	BeforeEach(func() {
		mols = []*box.Molecule{
			box.NewPoint(0, 0, r3.Vec{}),
			box.NewPoint(1, 0, r3.Vec{X: 1}),
			box.NewPoint(2, 0, r3.Vec{Y: 2}),
		}
		var err error
		b, err = box.New(mols)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts stable with ID 0", func() {
		Expect(b.InTrial()).To(BeFalse())
		Expect(b.CPairID()).To(Equal(int64(0)))
		Expect(b.CPairSet().R2(0, 1)).To(Equal(1.0))
		Expect(b.CPairSet().R2(0, 2)).To(Equal(4.0))
		Expect(b.CPairSet().R2(1, 2)).To(Equal(5.0))
	})

	It("refuses fewer than two molecules", func() {
		_, err := box.New(mols[:1])
		Expect(err).To(MatchError(box.ErrTooFewMolecules))
	})

	Context("during a trial", func() {
		BeforeEach(func() {
			mols[1].Translate(r3.Vec{X: 2})
			b.TrialNotify()
		})

		It("exposes the trial configuration under a new ID", func() {
			Expect(b.InTrial()).To(BeTrue())
			Expect(b.CPairID()).To(Equal(int64(1)))
			Expect(b.CPairSet().R2(0, 1)).To(Equal(9.0))
		})

		It("keeps the trial set on accept", func() {
			Expect(b.AcceptNotify()).To(Succeed())
			Expect(b.InTrial()).To(BeFalse())
			Expect(b.CPairID()).To(Equal(int64(1)))
			Expect(b.CPairSet().R2(0, 1)).To(Equal(9.0))
		})

		It("restores the previous set and ID on reject", func() {
			mols[1].Translate(r3.Vec{X: -2})
			Expect(b.RejectNotify()).To(Succeed())
			Expect(b.CPairID()).To(Equal(int64(0)))
			Expect(b.CPairSet().R2(0, 1)).To(Equal(1.0))
		})

		It("hands out fresh IDs after a reject", func() {
			Expect(b.RejectNotify()).To(Succeed())
			b.TrialNotify()
			Expect(b.CPairID()).To(Equal(int64(2)))
		})

		It("refuses a refresh", func() {
			Expect(b.Refresh()).To(MatchError(box.ErrTrialPending))
		})
	})

	It("fails accept and reject without a trial", func() {
		Expect(b.AcceptNotify()).To(MatchError(box.ErrNoTrial))
		Expect(b.RejectNotify()).To(MatchError(box.ErrNoTrial))
	})

	It("evaluates the installed sampling cluster on the visible set", func() {
		w := &countingWeight{}
		b.SetSampleCluster(w)
		Expect(b.SampleValue()).To(Equal(1.0))

		mols[1].Translate(r3.Vec{X: 1})
		b.TrialNotify()
		Expect(b.SampleValue()).To(Equal(4.0))
		Expect(w.calls).To(Equal(2))
	})

	It("panics on R2 with i >= j", func() {
		Expect(func() { b.CPairSet().R2(1, 1) }).To(Panic())
		Expect(func() { b.CPairSet().R2(2, 1) }).To(Panic())
	})

	It("clones into an independent box", func() {
		c := b.Clone()
		c.Molecules()[1].Translate(r3.Vec{X: 5})
		Expect(c.Refresh()).To(Succeed())
		Expect(c.CPairSet().R2(0, 1)).To(Equal(36.0))
		Expect(b.CPairSet().R2(0, 1)).To(Equal(1.0))
	})
})
