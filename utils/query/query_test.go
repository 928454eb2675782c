package query

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type note struct {
	ID        uint `gorm:"primaryKey"`
	TeacherID uint
	Title     string
	Body      string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)&mode=memory"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&note{})
	})

	return db
}

func seedNotes(t *testing.T, db *gorm.DB, notes []note) {
	t.Helper()
	if err := db.Create(&notes).Error; err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
}

func TestListFiltersByOwner(t *testing.T) {
	db := setupDB(t)
	seedNotes(t, db, []note{
		{TeacherID: 1, Title: "Algebra"},
		{TeacherID: 1, Title: "Geometry"},
		{TeacherID: 2, Title: "Biology"},
	})

	opts := Options{OwnerColumn: "notes.teacher_id", OrderColumn: "notes.id"}

	page, err := List[note](db, opts, Params{OwnerID: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected total 2, got %d", page.Total)
	}
	for _, n := range page.Items {
		if n.TeacherID != 1 {
			t.Errorf("leaked row from teacher %d", n.TeacherID)
		}
	}
}

func TestListEmptyOwnerYieldsEmptyPage(t *testing.T) {
	db := setupDB(t)
	seedNotes(t, db, []note{{TeacherID: 1, Title: "Algebra"}})

	opts := Options{OwnerColumn: "notes.teacher_id"}

	page, err := List[note](db, opts, Params{OwnerID: 0})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("expected empty page, got total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestListSharedCollectionSkipsOwnerFilter(t *testing.T) {
	db := setupDB(t)
	seedNotes(t, db, []note{
		{TeacherID: 1, Title: "Algebra"},
		{TeacherID: 2, Title: "Biology"},
	})

	page, err := List[note](db, Options{}, Params{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected all rows in shared collection, got %d", page.Total)
	}
}

func TestListSearchIsCaseInsensitiveAcrossColumns(t *testing.T) {
	db := setupDB(t)
	seedNotes(t, db, []note{
		{TeacherID: 1, Title: "Algebra I", Body: "linear equations"},
		{TeacherID: 1, Title: "Geometry", Body: "ALGEBRA review included"},
		{TeacherID: 1, Title: "Biology", Body: "cells"},
	})

	opts := Options{
		OwnerColumn:   "notes.teacher_id",
		SearchColumns: []string{"notes.title", "notes.body"},
	}

	page, err := List[note](db, opts, Params{OwnerID: 1, Search: "aLgEbRa"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 matches across title and body, got %d", page.Total)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := setupDB(t)
	seedNotes(t, db, []note{
		{TeacherID: 1, Title: "first"},
		{TeacherID: 1, Title: "second"},
		{TeacherID: 1, Title: "third"},
	})

	opts := Options{OwnerColumn: "notes.teacher_id", OrderColumn: "notes.id"}

	page, err := List[note](db, opts, Params{OwnerID: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.Items[0].Title != "third" || page.Items[2].Title != "first" {
		t.Errorf("expected descending order, got %q..%q", page.Items[0].Title, page.Items[2].Title)
	}
}

func TestListPagination(t *testing.T) {
	db := setupDB(t)
	notes := make([]note, 0, 25)
	for i := 0; i < 25; i++ {
		notes = append(notes, note{TeacherID: 1, Title: fmt.Sprintf("note %02d", i)})
	}
	seedNotes(t, db, notes)

	opts := Options{OwnerColumn: "notes.teacher_id", OrderColumn: "notes.id", DefaultLimit: 10}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantItems int
	}{
		{"first page default limit", 1, 0, 10},
		{"second page", 2, 10, 10},
		{"last partial page", 3, 10, 5},
		{"past the end", 4, 10, 0},
		{"limit clamped to 100", 1, 500, 25},
		{"zero page treated as first", 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := List[note](db, opts, Params{OwnerID: 1, Page: tt.page, Limit: tt.limit})
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if page.Total != 25 {
				t.Errorf("expected total 25, got %d", page.Total)
			}
			if len(page.Items) != tt.wantItems {
				t.Errorf("expected %d items, got %d", tt.wantItems, len(page.Items))
			}
		})
	}
}
