package store_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/models"
	"github.com/cppla/quickpost/store/storetest"
)

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	if _, err := s.CreateUser(ctx, "ann@example.com", "h1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, err := s.CreateUser(ctx, "ann@example.com", "h2")
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("second CreateUser err = %v, want conflict", err)
	}
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	created, err := s.CreateUser(ctx, "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}

	byEmail, err := s.UserByEmail(ctx, "bob@example.com")
	if err != nil || byEmail != created {
		t.Fatalf("UserByEmail = %+v, %v", byEmail, err)
	}
	byID, err := s.UserByID(ctx, created.ID)
	if err != nil || byID != created {
		t.Fatalf("UserByID = %+v, %v", byID, err)
	}

	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("UserByEmail(missing) err = %v", err)
	}
	if _, err := s.UserByID(ctx, created.ID+100); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("UserByID(missing) err = %v", err)
	}
}

func TestDeleteUserRemovesPosts(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	u, _ := s.CreateUser(ctx, "carol@example.com", "hash")
	if _, err := s.CreatePost(ctx, u.ID, "hello"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.UserByID(ctx, u.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("user still present: %v", err)
	}
	posts, err := s.PostsByOwner(ctx, u.ID)
	if err != nil || len(posts) != 0 {
		t.Fatalf("posts after DeleteUser = %v, %v", posts, err)
	}
	if err := s.DeleteUser(ctx, u.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("second DeleteUser err = %v", err)
	}
}

func TestPostsByOwnerIsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	a, _ := s.CreateUser(ctx, "a@example.com", "h")
	b, _ := s.CreateUser(ctx, "b@example.com", "h")

	var want []models.Post
	for _, text := range []string{"one", "two", "three"} {
		p, err := s.CreatePost(ctx, a.ID, text)
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		want = append(want, p)
	}
	if _, err := s.CreatePost(ctx, b.ID, "not yours"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	got, err := s.PostsByOwner(ctx, a.ID)
	if err != nil {
		t.Fatalf("PostsByOwner: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d posts, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("post %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	empty, err := s.PostsByOwner(ctx, 9999)
	if err != nil {
		t.Fatalf("PostsByOwner(empty): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty listing = %#v, want non-nil empty slice", empty)
	}
}

func TestPostTextAtSizeLimitRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	u, _ := s.CreateUser(ctx, "big@example.com", "h")
	text := strings.Repeat("x", models.MaxPostBytes)
	p, err := s.CreatePost(ctx, u.ID, text)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	got, err := s.PostByOwner(ctx, u.ID, p.ID)
	if err != nil {
		t.Fatalf("PostByOwner: %v", err)
	}
	if len(got.Text) != models.MaxPostBytes {
		t.Fatalf("stored %d bytes", len(got.Text))
	}
}

func TestDeletePostRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	owner, _ := s.CreateUser(ctx, "owner@example.com", "h")
	other, _ := s.CreateUser(ctx, "other@example.com", "h")
	p, _ := s.CreatePost(ctx, owner.ID, "mine")

	if err := s.DeletePost(ctx, other.ID, p.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("DeletePost by non-owner err = %v", err)
	}
	if err := s.DeletePost(ctx, owner.ID, p.ID); err != nil {
		t.Fatalf("DeletePost by owner: %v", err)
	}
	if err := s.DeletePost(ctx, owner.ID, p.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("repeat DeletePost err = %v", err)
	}
}

func TestConcurrentDeleteExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	u, _ := s.CreateUser(ctx, "race@example.com", "h")
	p, _ := s.CreatePost(ctx, u.ID, "contested")

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.DeletePost(ctx, u.ID, p.ID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.NotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || notFound != workers-1 {
		t.Fatalf("ok=%d notFound=%d", ok, notFound)
	}
}

func TestUpdatePostText(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	owner, _ := s.CreateUser(ctx, "ed@example.com", "h")
	other, _ := s.CreateUser(ctx, "fay@example.com", "h")
	p, _ := s.CreatePost(ctx, owner.ID, "draft")

	if _, err := s.UpdatePostText(ctx, other.ID, p.ID, "hijack"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("UpdatePostText by non-owner err = %v", err)
	}
	updated, err := s.UpdatePostText(ctx, owner.ID, p.ID, "final")
	if err != nil {
		t.Fatalf("UpdatePostText: %v", err)
	}
	if updated.Text != "final" || updated.ID != p.ID || updated.OwnerID != owner.ID {
		t.Fatalf("updated = %+v", updated)
	}
	// Same text again must still succeed.
	if _, err := s.UpdatePostText(ctx, owner.ID, p.ID, "final"); err != nil {
		t.Fatalf("idempotent UpdatePostText: %v", err)
	}
}

func TestCountsAndPing(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	u, _ := s.CreateUser(ctx, "stats@example.com", "hash")
	_, _ = s.CreatePost(ctx, u.ID, "one")
	_, _ = s.CreatePost(ctx, u.ID, "two")

	users, posts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if users != 1 || posts != 2 {
		t.Fatalf("Counts = %d users, %d posts", users, posts)
	}
}
