// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"uisketch/internal/models"
)

func TestVersionStoreUpsert(t *testing.T) {
	db := testDB(t)
	s := NewVersionStore(db)
	user := seedUser(t, db, "test-version-upsert@store-test.local", models.PlanFree)
	project := seedProject(t, db, user.ID)
	mockup := seedMockup(t, db, project.ID)

	v1, err := s.Upsert(mockup.ID, 1, `<div class="a">one</div>`, "a test dashboard")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if v1.ID == uuid.Nil || v1.Version != 1 {
		t.Fatalf("got %+v", v1)
	}

	// Upserting the same version number rewrites the row in place.
	again, err := s.Upsert(mockup.ID, 1, `<div class="a2">one prime</div>`, "a test dashboard (retry)")
	if err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}
	if again.ID != v1.ID {
		t.Errorf("upsert created a new row: %v != %v", again.ID, v1.ID)
	}
	if again.Code != `<div class="a2">one prime</div>` {
		t.Errorf("code: got %q", again.Code)
	}

	versions, err := s.ListByMockup(mockup.ID)
	if err != nil {
		t.Fatalf("ListByMockup: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("versions: got %d, want 1", len(versions))
	}
}

func TestVersionStoreListOrder(t *testing.T) {
	db := testDB(t)
	s := NewVersionStore(db)
	user := seedUser(t, db, "test-version-list@store-test.local", models.PlanFree)
	project := seedProject(t, db, user.ID)
	mockup := seedMockup(t, db, project.ID)

	// Insert out of order; the listing sorts by version number.
	for _, n := range []int{3, 1, 2} {
		if _, err := s.Upsert(mockup.ID, n, `<div class="x">v</div>`, "p"); err != nil {
			t.Fatalf("Upsert %d: %v", n, err)
		}
	}

	versions, err := s.ListByMockup(mockup.ID)
	if err != nil {
		t.Fatalf("ListByMockup: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("versions: got %d, want 3", len(versions))
	}
	for i, v := range versions {
		if v.Version != i+1 {
			t.Errorf("position %d: got version %d", i, v.Version)
		}
	}
}

func TestVersionStoreFindScoped(t *testing.T) {
	db := testDB(t)
	s := NewVersionStore(db)
	user := seedUser(t, db, "test-version-find@store-test.local", models.PlanFree)
	project := seedProject(t, db, user.ID)
	mockup := seedMockup(t, db, project.ID)
	otherMockup := seedMockup(t, db, project.ID)

	v, err := s.Upsert(mockup.ID, 1, `<div class="a">one</div>`, "p")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.FindByID(v.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil || got.ID != v.ID {
		t.Fatalf("got %+v", got)
	}

	got, err = s.FindByIDForMockup(v.ID, mockup.ID)
	if err != nil {
		t.Fatalf("FindByIDForMockup: %v", err)
	}
	if got == nil {
		t.Fatal("scoped lookup missed own version")
	}

	got, err = s.FindByIDForMockup(v.ID, otherMockup.ID)
	if err != nil {
		t.Fatalf("FindByIDForMockup (wrong mockup): %v", err)
	}
	if got != nil {
		t.Errorf("scoped lookup leaked version across mockups")
	}

	got, err = s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID (missing): %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing version, got %+v", got)
	}
}

func TestVersionStoreUpdateContent(t *testing.T) {
	db := testDB(t)
	s := NewVersionStore(db)
	user := seedUser(t, db, "test-version-update@store-test.local", models.PlanFree)
	project := seedProject(t, db, user.ID)
	mockup := seedMockup(t, db, project.ID)

	v, err := s.Upsert(mockup.ID, 2, `<div class="old">v2</div>`, "original")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := s.UpdateContent(v.ID, `<div class="new">v2 edited</div>`, "make it dark"); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}

	got, err := s.FindByID(v.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Code != `<div class="new">v2 edited</div>` {
		t.Errorf("code: got %q", got.Code)
	}
	if got.Prompt != "make it dark" {
		t.Errorf("prompt: got %q", got.Prompt)
	}
	if got.Version != 2 {
		t.Errorf("version renumbered: got %d", got.Version)
	}
}
