package dataset_test

import (
	"testing"
	"time"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/dataset"
	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/normalize"
	"github.com/openfinbr/conciliador/internal/parser"
)

func fixedClock() time.Time {
	return time.Date(2025, 11, 25, 12, 0, 0, 0, time.UTC)
}

func stamped(file string, line int) domain.Provenance {
	b := domain.ProvenanceBuilder{
		SourceFile:    file,
		ParserName:    "test",
		ParserVersion: "0",
		Clock:         fixedClock,
	}
	return b.Stamp("raw line", line)
}

func testPerson(id, name, doc, file string) *domain.CanonicalPerson {
	return &domain.CanonicalPerson{
		ID:         id,
		Name:       normalize.NormalizeName(name, normalize.DefaultNameConfig()),
		Document:   normalize.ParseDocument(doc),
		Provenance: stamped(file, 2),
	}
}

func TestBuild_MergesPersonsByDocument(t *testing.T) {
	fromLedger := testPerson("p1", "Célia Costa dos Santos", "390.533.447-05", "a.csv")
	fromPivot := testPerson("p2", "Celia C. dos Santos", "390.533.447-05", "b.csv")
	txn := &domain.CanonicalTransaction{
		ID:       "t1",
		Date:     "2025-01-05",
		Amount:   domain.NewMoney(15000),
		PersonID: "p2",
	}

	batch := &parser.BatchResult{Results: []*parser.ParseResult{
		{SourceFile: "a.csv", Persons: []*domain.CanonicalPerson{fromLedger}},
		{SourceFile: "b.csv", Persons: []*domain.CanonicalPerson{fromPivot},
			Transactions: []*domain.CanonicalTransaction{txn}},
	}}

	ds := dataset.Build(batch, dataset.BuildOptions{})

	if len(ds.Persons) != 1 {
		t.Fatalf("persons = %d, want 1 after merge", len(ds.Persons))
	}
	merged := ds.Persons[0]
	if merged.ID != "p1" {
		t.Errorf("surviving ID = %q, want first-seen p1", merged.ID)
	}
	if merged.Provenance.SourceFile != "a.csv+b.csv" {
		t.Errorf("merged source = %q", merged.Provenance.SourceFile)
	}
	if merged.Provenance.ParserName != "merged" {
		t.Errorf("merged parser = %q", merged.Provenance.ParserName)
	}

	// The transaction pointed at the absorbed record; it must follow.
	if txn.PersonID != "p1" {
		t.Errorf("transaction person = %q, want remapped p1", txn.PersonID)
	}

	if ds.ByID["p1"] != merged {
		t.Error("ByID index must hold the surviving record")
	}
	if block := ds.ByFirstToken["CELIA"]; len(block) != 1 || block[0] != merged {
		t.Errorf("ByFirstToken[CELIA] = %v", block)
	}
}

func TestBuild_MergesByNameWhenNoDocument(t *testing.T) {
	a := testPerson("p1", "João Silva", "", "a.csv")
	b := testPerson("p2", "JOAO   SILVA", "111.444.777-35", "b.csv")

	batch := &parser.BatchResult{Results: []*parser.ParseResult{
		{SourceFile: "a.csv", Persons: []*domain.CanonicalPerson{a}},
		{SourceFile: "b.csv", Persons: []*domain.CanonicalPerson{b}},
	}}

	ds := dataset.Build(batch, dataset.BuildOptions{})

	// b carries a valid document, so it keys differently and stays
	// separate. Name-only merging applies between undocumented records.
	if len(ds.Persons) != 2 {
		t.Fatalf("persons = %d, want 2", len(ds.Persons))
	}

	c := testPerson("p3", "Joao Silva", "", "c.csv")
	batch.Results = append(batch.Results, &parser.ParseResult{
		SourceFile: "c.csv",
		Persons:    []*domain.CanonicalPerson{c},
	})
	ds = dataset.Build(batch, dataset.BuildOptions{})
	if len(ds.Persons) != 2 {
		t.Fatalf("persons = %d, want 2 after name merge", len(ds.Persons))
	}
}

func TestBuild_LinksTransactionsToPersons(t *testing.T) {
	celia := testPerson("p1", "Célia Costa dos Santos", "390.533.447-05", "a.csv")

	unlinked := &domain.CanonicalTransaction{
		ID:           "t1",
		Date:         "2025-01-05",
		Amount:       domain.NewMoney(15000),
		Counterparty: normalize.NormalizeName("Celia Costa", normalize.DefaultNameConfig()),
	}
	stranger := &domain.CanonicalTransaction{
		ID:           "t2",
		Date:         "2025-01-06",
		Amount:       domain.NewMoney(5000),
		Counterparty: normalize.NormalizeName("Zulmira Braga", normalize.DefaultNameConfig()),
	}

	batch := &parser.BatchResult{Results: []*parser.ParseResult{
		{SourceFile: "a.csv", Persons: []*domain.CanonicalPerson{celia},
			Transactions: []*domain.CanonicalTransaction{unlinked, stranger}},
	}}

	ds := dataset.Build(batch, dataset.BuildOptions{
		LinkTransactions: true,
		Match:            config.DefaultMatchConfig(),
	})

	if unlinked.PersonID != "p1" {
		t.Errorf("person = %q, want p1", unlinked.PersonID)
	}
	if unlinked.PersonScore < 60 {
		t.Errorf("person score = %d, want >= 60", unlinked.PersonScore)
	}
	if len(unlinked.PersonEvidence) == 0 {
		t.Error("linking must record evidence")
	}

	if stranger.PersonID != "" {
		t.Errorf("unknown counterparty linked to %q", stranger.PersonID)
	}

	if len(ds.Transactions) != 2 {
		t.Errorf("transactions = %d, want 2", len(ds.Transactions))
	}
}
