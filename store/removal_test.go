package store_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/pkg/errors"

	"linkage/store"
	"linkage/utils"
)

var _ = Describe("Unlink on destroy", func() {

	It("clears only the destroyed record's own link fields", func() {
		s, persister := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment1.Set("post", post1)

		err := s.Destroy(context.Background(), comment1)
		Expect(err).To(BeNil())

		Expect(persister.Destroyed).To(ConsistOf(10))
		Expect(comment1.Get("post")).To(BeNil())
		Expect(s.Get("comment", 10)).To(BeNil())
		Expect(post1.Data).To(Equal(map[string]interface{}{"id": 1}))
	})

	It("leaves other records pointing at the destroyed one", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment1.Set("post", post1)

		err := s.Destroy(context.Background(), post1)
		Expect(err).To(BeNil())

		//lazy consistency: the comment's view of the destroyed post is
		//refreshed only by a later mutation or fetch
		Expect(s.Get("post", 1)).To(BeNil())
		Expect(comment1.Get("post")).To(BeIdenticalTo(post1))
		Expect(comment1.Get("postId")).To(Equal(1))
	})

	It("performs zero mutations when a bulk destroy matches nothing", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment1.Set("post", post1)

		recordSet, err := s.DestroyAll(context.Background(), "comment", nil)
		Expect(err).To(BeNil())

		Expect(recordSet.Records).To(BeEmpty())
		Expect(comment1.Get("post")).To(BeIdenticalTo(post1))
		Expect(post1.Get("comments")).To(ConsistOf(comment1))
	})

	It("applies the unlink pass to every record destroyed in bulk", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment2, _ := s.Put("comment", map[string]interface{}{"id": 11})
		comment1.Set("post", post1)
		comment2.Set("post", post1)

		recordSet, err := s.DestroyAll(context.Background(), "comment", []interface{}{10, 11})
		Expect(err).To(BeNil())

		Expect(recordSet.Records).To(HaveLen(2))
		Expect(recordSet.GetRecordById(10)).To(BeIdenticalTo(comment1))
		Expect(recordSet.Data()).To(ConsistOf(comment1.Data, comment2.Data))
		Expect(comment1.Get("post")).To(BeNil())
		Expect(comment2.Get("post")).To(BeNil())
		Expect(post1.Get("comments")).To(BeEmpty())
	})

	It("skips the unlink pass when disabled by configuration", func() {
		persister, _ := store.PersisterFactories[store.TEST]([]string{})
		s := store.NewStore(persister, &utils.AppConfig{UnlinkOnDestroy: false})
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment1.Set("post", post1)

		err := s.Destroy(context.Background(), comment1)
		Expect(err).To(BeNil())

		Expect(s.Get("comment", 10)).To(BeNil())
		Expect(comment1.Get("post")).To(BeIdenticalTo(post1))
	})

	It("leaves the record untouched when the persister fails", func() {
		s, persister := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment1.Set("post", post1)

		persister.NextError = errors.New("persistence refused")
		err := s.Destroy(context.Background(), comment1)
		Expect(err).NotTo(BeNil())

		Expect(s.Get("comment", 10)).To(BeIdenticalTo(comment1))
		Expect(comment1.Get("post")).To(BeIdenticalTo(post1))
		Expect(post1.Get("comments")).To(ConsistOf(comment1))
	})
})
