package store_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/pkg/errors"

	"linkage/store"
	linkerrors "linkage/store/errors"
)

var _ = Describe("Outer link (hasOne)", func() {

	It("links a passport to its person from the one side", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})
		passport1, _ := s.Put("passport", map[string]interface{}{"id": 100})

		resolved, err := person1.Set("passport", passport1)
		Expect(err).To(BeNil())
		Expect(resolved).To(BeIdenticalTo(passport1))

		Expect(person1.Get("passport")).To(BeIdenticalTo(passport1))
		Expect(passport1.Get("personId")).To(Equal(1))
		Expect(passport1.Get("owner")).To(BeIdenticalTo(person1))
	})

	It("fully tears down the old triangle before attaching a new passport", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})
		passport1, _ := s.Put("passport", map[string]interface{}{"id": 100})
		passport2, _ := s.Put("passport", map[string]interface{}{"id": 101})

		person1.Set("passport", passport1)
		_, err := person1.Set("passport", passport2)
		Expect(err).To(BeNil())

		Expect(passport1.Get("personId")).To(BeNil())
		Expect(passport1.Get("owner")).To(BeNil())
		Expect(person1.Get("passport")).To(BeIdenticalTo(passport2))
		Expect(passport2.Get("personId")).To(Equal(1))
		Expect(passport2.Get("owner")).To(BeIdenticalTo(person1))
	})

	It("unlinks the current passport when set to nil", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})
		passport1, _ := s.Put("passport", map[string]interface{}{"id": 100})
		person1.Set("passport", passport1)

		resolved, err := person1.Set("passport", nil)
		Expect(err).To(BeNil())
		Expect(resolved).To(BeNil())

		Expect(person1.Get("passport")).To(BeNil())
		Expect(passport1.Get("personId")).To(BeNil())
		Expect(passport1.Get("owner")).To(BeNil())
	})

	It("substitutes a detached passport with the canonical stored instance", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})
		passport1, _ := s.Put("passport", map[string]interface{}{"id": 100, "issued": "stored"})

		detached := store.NewRecord(s.Mapper("passport"), map[string]interface{}{"id": 100, "issued": "detached"})
		resolved, err := person1.Set("passport", detached)
		Expect(err).To(BeNil())

		Expect(resolved).To(BeIdenticalTo(passport1))
		Expect(person1.Get("passport")).To(BeIdenticalTo(passport1))
	})

	It("creates a passport through the relation and defers the key write", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})

		created, err := s.CreateLinked(context.Background(), person1, "passport", map[string]interface{}{"id": 100})
		Expect(err).To(BeNil())

		Expect(created.Get("personId")).To(Equal(1))
		Expect(person1.Get("passport")).To(BeIdenticalTo(created))
		Expect(created.Get("owner")).To(BeIdenticalTo(person1))
		Expect(s.Get("passport", 100)).To(BeIdenticalTo(created))
	})

	It("tears the old triangle down when a passport is created over an existing one", func() {
		s, _ := newTestStore()
		definePersonAndPassport(s)

		person1, _ := s.Put("person", map[string]interface{}{"id": 1})
		passport1, _ := s.Put("passport", map[string]interface{}{"id": 100})
		person1.Set("passport", passport1)

		created, err := s.CreateLinked(context.Background(), person1, "passport", map[string]interface{}{"id": 101})
		Expect(err).To(BeNil())

		Expect(passport1.Get("personId")).To(BeNil())
		Expect(passport1.Get("owner")).To(BeNil())
		Expect(person1.Get("passport")).To(BeIdenticalTo(created))
		Expect(created.Get("personId")).To(Equal(1))
		Expect(created.Get("owner")).To(BeIdenticalTo(person1))
		Expect(s.Collection("passport").GetRecordsByIndex("personId", 1)).To(ConsistOf(created))
	})
})

var _ = Describe("Outer link (hasMany)", func() {

	It("exposes members as a live view over the foreign-key index", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10, "postId": 1})
		comment2, _ := s.Put("comment", map[string]interface{}{"id": 11, "postId": 1})
		s.Put("comment", map[string]interface{}{"id": 12, "postId": 2})

		Expect(post1.Get("comments")).To(ConsistOf(comment1, comment2))
	})

	It("replaces the whole membership, diffing old against new", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})
		comment2, _ := s.Put("comment", map[string]interface{}{"id": 11})
		comment3, _ := s.Put("comment", map[string]interface{}{"id": 12})

		_, err := post1.Set("comments", []*store.Record{comment1, comment2})
		Expect(err).To(BeNil())
		Expect(post1.Get("comments")).To(ConsistOf(comment1, comment2))

		_, err = post1.Set("comments", []*store.Record{comment2, comment3})
		Expect(err).To(BeNil())

		Expect(post1.Get("comments")).To(ConsistOf(comment2, comment3))
		Expect(comment1.Get("postId")).To(BeNil())
		Expect(comment1.Get("post")).To(BeNil())
		Expect(comment3.Get("postId")).To(Equal(1))
		Expect(comment3.Get("post")).To(BeIdenticalTo(post1))
	})

	It("links and unlinks single members", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		comment1, _ := s.Put("comment", map[string]interface{}{"id": 10})

		linker := &store.HasManyLinker{}
		relation := s.Mapper("post").FindRelation("comments")

		Expect(linker.AddMember(s, relation, post1, comment1)).To(BeNil())
		Expect(post1.Get("comments")).To(ConsistOf(comment1))
		Expect(comment1.Get("post")).To(BeIdenticalTo(post1))

		Expect(linker.RemoveMember(s, relation, post1, comment1)).To(BeNil())
		Expect(post1.Get("comments")).To(BeEmpty())
		Expect(comment1.Get("postId")).To(BeNil())
	})

	It("raises a misuse error for a non-list value", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		_, err := post1.Set("comments", 42)
		Expect(err).NotTo(BeNil())

		linkError, ok := err.(*linkerrors.LinkError)
		Expect(ok).To(BeTrue())
		Expect(linkError.Code).To(Equal(linkerrors.ErrMisuse))
	})

	It("creates a comment through the relation once the persister resolves", func() {
		s, _ := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})

		created, err := s.CreateLinked(context.Background(), post1, "comments", map[string]interface{}{"id": 10})
		Expect(err).To(BeNil())

		Expect(created.Get("postId")).To(Equal(1))
		Expect(post1.Get("comments")).To(ConsistOf(created))
		Expect(s.Get("comment", 10)).To(BeIdenticalTo(created))
	})

	It("propagates a failed creation with no link state written", func() {
		s, persister := newTestStore()
		definePostAndComment(s)

		post1, _ := s.Put("post", map[string]interface{}{"id": 1})
		persister.NextError = errors.New("persistence rejected the record")

		created, err := s.CreateLinked(context.Background(), post1, "comments", map[string]interface{}{"id": 10})
		Expect(err).NotTo(BeNil())
		Expect(created).To(BeNil())

		Expect(post1.Get("comments")).To(BeEmpty())
		Expect(s.Get("comment", 10)).To(BeNil())
		Expect(s.Collection("comment").Size()).To(Equal(0))
	})
})
