package database_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/trustsphere/trustsphere/business/sys/database"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type doc struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestCRUD(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")

	t.Log("Given the need to persist mirror documents.")
	{
		t.Log("\tTest 0:\tWhen inserting and finding documents.")
		{
			db, err := database.New(path)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to open the database.", success)

			if err := database.Insert(db, "docs", doc{ID: "a"}); err != nil {
				t.Fatalf("\t%s\tShould be able to insert a document: %v", failed, err)
			}
			if err := database.Insert(db, "docs", doc{ID: "b"}); err != nil {
				t.Fatalf("\t%s\tShould be able to insert a document: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to insert documents.", success)

			found, exists, err := database.FindOne(db, "docs", func(d doc) bool { return d.ID == "b" })
			if err != nil || !exists {
				t.Fatalf("\t%s\tShould be able to find the document: exists[%v] err[%v]", failed, exists, err)
			}
			if found.ID != "b" {
				t.Fatalf("\t%s\tShould find the matching document: got[%s]", failed, found.ID)
			}
			t.Logf("\t%s\tShould be able to find the document.", success)

			_, exists, err = database.FindOne(db, "docs", func(d doc) bool { return d.ID == "zzz" })
			if err != nil || exists {
				t.Fatalf("\t%s\tShould not find a missing document: exists[%v] err[%v]", failed, exists, err)
			}
			t.Logf("\t%s\tShould not find a missing document.", success)
		}

		t.Log("\tTest 1:\tWhen updating documents atomically.")
		{
			db, err := database.New(path)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to reopen the database: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to reopen the database.", success)

			docs, err := database.Find(db, "docs", func(d doc) bool { return true })
			if err != nil {
				t.Fatalf("\t%s\tShould be able to query documents: %v", failed, err)
			}
			if len(docs) != 2 {
				t.Fatalf("\t%s\tShould survive a reload from disk: exp[2] got[%d]", failed, len(docs))
			}
			t.Logf("\t%s\tShould survive a reload from disk.", success)

			err = database.Update(db, "docs", func(docs []doc) ([]doc, error) {
				for i := range docs {
					if docs[i].ID == "a" {
						docs[i].Count++
					}
				}
				return docs, nil
			})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to update documents: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to update documents.", success)

			boom := errors.New("boom")
			err = database.Update(db, "docs", func(docs []doc) ([]doc, error) {
				return nil, boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("\t%s\tShould surface the update error: %v", failed, err)
			}
			t.Logf("\t%s\tShould surface the update error.", success)

			found, _, err := database.FindOne(db, "docs", func(d doc) bool { return d.ID == "a" })
			if err != nil || found.Count != 1 {
				t.Fatalf("\t%s\tShould leave the collection unchanged after a failed update: count[%d] err[%v]", failed, found.Count, err)
			}
			t.Logf("\t%s\tShould leave the collection unchanged after a failed update.", success)
		}
	}
}
