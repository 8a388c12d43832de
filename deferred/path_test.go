package deferred_test

import (
	"github.com/deferexec/graphql/deferred"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("OutputPath", func() {
	It("converts losslessly to a graphql.ResponsePath once every segment is concrete", func() {
		path := deferred.OutputPath{}.Append(deferred.Field("a"), deferred.Elem(2), deferred.Field("b"))
		responsePath, ok := path.ToResponsePath()
		Expect(ok).Should(BeTrue())
		Expect(responsePath.Keys()).Should(Equal([]interface{}{"a", 2, "b"}))
	})

	It("refuses conversion while a placeholder remains unresolved", func() {
		path := deferred.OutputPath{}.Append(deferred.Field("items"), deferred.Placeholder(), deferred.Field("name"))
		_, ok := path.ToResponsePath()
		Expect(ok).Should(BeFalse())
	})

	It("counts placeholders", func() {
		path := deferred.OutputPath{}.Append(deferred.Placeholder(), deferred.Field("a"), deferred.Placeholder())
		Expect(path.PlaceholderCount()).Should(Equal(2))
	})

	It("does not mutate the receiver on Append", func() {
		base := deferred.OutputPath{}.Append(deferred.Field("a"))
		_ = base.Append(deferred.Field("b"))
		Expect(base).Should(HaveLen(1))
	})
})

var _ = Describe("BatchPath", func() {
	It("remembers its batch slot and strips it from Tail", func() {
		path := deferred.NewBatchPath(3, deferred.Field("x"), deferred.Elem(1))
		Expect(path.Slot()).Should(Equal(3))
		Expect(path.Tail()).Should(Equal(deferred.BatchPath{deferred.Field("x"), deferred.Elem(1)}))
	})

	It("counts placeholders excluding the leading slot segment", func() {
		path := deferred.NewBatchPath(0, deferred.Placeholder(), deferred.Field("a"))
		Expect(path.PlaceholderCount()).Should(Equal(1))
	})

	It("appends without mutating the receiver", func() {
		base := deferred.NewBatchPath(0, deferred.Field("a"))
		grown := base.Append(deferred.Field("b"))
		Expect(base).Should(HaveLen(2))
		Expect(grown).Should(HaveLen(3))
	})
})
