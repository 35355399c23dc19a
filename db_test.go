package recordkv

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
)

var personDef = &Definition{
	TypeID:        "person",
	UniqueFields:  []string{"ssn", "email"},
	IndexedChains: [][]string{{"lastname", "firstname"}, {"country", "zipcode"}},
}

var invoiceDef = &Definition{
	TypeID:        "invoice",
	UniqueFields:  []string{"invoiceNumber"},
	IndexedChains: [][]string{{"customerEmail"}},
}

func alice() Record {
	return Record{
		"ssn":       String("123-45-6789"),
		"email":     String("alice@example.com"),
		"lastname":  String("Smith"),
		"firstname": String("Alice"),
		"country":   String("US"),
		"zipcode":   String("12345"),
		"age":       Int(34),
	}
}

func bob() Record {
	return Record{
		"ssn":       String("987-65-4321"),
		"email":     String("bob@example.com"),
		"lastname":  String("Smith"),
		"firstname": String("Bob"),
		"country":   String("US"),
		"zipcode":   String("12345"),
		"age":       Int(41),
	}
}

func invoice(number int64, customerEmail string) Record {
	return Record{
		"invoiceNumber": Int(number),
		"customerEmail": String(customerEmail),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("must failed: %w", err))
	}
	return v
}

func check(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func deepEqual[T any](t testing.TB, got, want T) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("** got %v, wanted %v", got, want)
	}
}

func setup(t testing.TB, defs ...*Definition) *DB {
	t.Helper()
	if len(defs) == 0 {
		defs = []*Definition{personDef, invoiceDef}
	}
	reg := must(NewRegistry(defs...))
	db := must(Open("", reg, Options{Logf: t.Logf, Verbose: testing.Verbose(), IsTesting: true}))
	t.Cleanup(func() {
		check(t, db.Close())
	})
	return db
}

// dumpState renders every physical key/value pair so two states can be
// compared exactly.
func dumpState(t testing.TB, db *DB) []string {
	t.Helper()
	var out []string
	check(t, db.VisitRaw("", func(key Key, value []byte) error {
		out = append(out, fmt.Sprintf("%s => %x", key, value))
		return nil
	}))
	return out
}

func keyStrings(t testing.TB, db *DB, typeID string) []string {
	t.Helper()
	var out []string
	check(t, db.VisitRaw(typeID, func(key Key, value []byte) error {
		out = append(out, key.String())
		return nil
	}))
	return out
}

func fieldValues(recs []Record, field string) []string {
	var out []string
	for _, rec := range recs {
		v, _ := rec.Field(field)
		out = append(out, v.String())
	}
	return out
}

func TestFindByEveryUniqueField(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))

	for _, field := range personDef.UniqueFields {
		want := alice()
		v, _ := want.Field(field)
		rec := must(db.Find("person", field, v))
		if rec == nil {
			t.Fatalf("** Find by %s returned nothing", field)
		}
		deepEqual(t, rec, want)
	}
}

func TestIndexFanOut(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))

	deepEqual(t, keyStrings(t, db, "person"), []string{
		"person|country|US|zipcode|12345|123-45-6789",
		"person|email|alice@example.com",
		"person|lastname|Smith|firstname|Alice|123-45-6789",
		"person|ssn|123-45-6789",
	})
}

func TestResaveIsIdempotent(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))
	before := dumpState(t, db)

	check(t, db.Save("person", alice()))
	deepEqual(t, dumpState(t, db), before)
}

func TestDeleteRemovesEveryKey(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))
	check(t, db.Save("person", bob()))

	check(t, db.DeleteRecord("person", alice()))

	if rec := must(db.Find("person", "ssn", String("123-45-6789"))); rec != nil {
		t.Errorf("** deleted record still findable: %v", rec)
	}
	deepEqual(t, len(keyStrings(t, db, "person")), 4) // bob's keys only
	recs := must(db.FindAll("person", nil))
	deepEqual(t, fieldValues(recs, "firstname"), []string{"Bob"})
}

func TestDeleteByUniqueField(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))

	check(t, db.Delete("person", "email", String("alice@example.com")))
	deepEqual(t, len(keyStrings(t, db, "person")), 0)

	// Deleting a missing record is a no-op.
	check(t, db.Delete("person", "ssn", String("000-00-0000")))
}

func TestClearTypeScope(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))
	check(t, db.Save("invoice", invoice(1001, "alice@example.com")))

	check(t, db.ClearType("person"))
	deepEqual(t, len(keyStrings(t, db, "person")), 0)
	deepEqual(t, len(keyStrings(t, db, "invoice")), 2)

	if err := db.ClearType(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("** ClearType(\"\") = %v, wanted ErrInvalidArgument", err)
	}

	check(t, db.ClearAll())
	deepEqual(t, len(dumpState(t, db)), 0)

	// Clearing an already empty store is fine.
	check(t, db.ClearAll())
}

func TestEmptyStateDefaults(t *testing.T) {
	db := setup(t)

	if rec := must(db.Find("person", "ssn", String("123-45-6789"))); rec != nil {
		t.Errorf("** Find on empty store = %v", rec)
	}
	deepEqual(t, len(must(db.FindAll("person", nil))), 0)
	deepEqual(t, len(must(db.FindAll("", nil))), 0)
}

func TestFindAllShapes(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))
	check(t, db.Save("person", bob()))
	check(t, db.Save("invoice", invoice(1001, "alice@example.com")))

	// Everything: invoice sorts before person.
	recs := must(db.FindAll("", nil))
	deepEqual(t, len(recs), 3)

	// One type; each record once despite four keys apiece.
	recs = must(db.FindAll("person", nil))
	deepEqual(t, fieldValues(recs, "ssn"), []string{"123-45-6789", "987-65-4321"})

	// Bare field.
	recs = must(db.FindAll("person", ByField("lastname")))
	deepEqual(t, fieldValues(recs, "firstname"), []string{"Alice", "Bob"})

	// Partial chain.
	recs = must(db.FindAll("person", Where(Eq("country", String("US")))))
	deepEqual(t, fieldValues(recs, "ssn"), []string{"123-45-6789", "987-65-4321"})

	// Full chain, ordered by the trailing primary value.
	recs = must(db.FindAll("person", Where(Eq("country", String("US")), Eq("zipcode", String("12345")))))
	deepEqual(t, fieldValues(recs, "ssn"), []string{"123-45-6789", "987-65-4321"})

	// Full chain narrowed to one primary value.
	sel := Where(Eq("country", String("US")), Eq("zipcode", String("12345")))
	sel.Primary = String("987-65-4321")
	recs = must(db.FindAll("person", sel))
	deepEqual(t, fieldValues(recs, "firstname"), []string{"Bob"})

	// No matches.
	deepEqual(t, len(must(db.FindAll("person", Where(Eq("country", String("CA")))))), 0)
}

func TestFindAllInvoicesByCustomer(t *testing.T) {
	db := setup(t)
	check(t, db.Save("invoice", invoice(1003, "alice@example.com")))
	check(t, db.Save("invoice", invoice(1001, "alice@example.com")))
	check(t, db.Save("invoice", invoice(1002, "bob@example.com")))

	recs := must(db.FindAll("invoice", Where(Eq("customerEmail", String("alice@example.com")))))
	deepEqual(t, fieldValues(recs, "invoiceNumber"), []string{"1001", "1003"})
}

func TestStaleIndexedKeySurvivesResave(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))

	moved := alice()
	moved["zipcode"] = String("99999")
	check(t, db.Save("person", moved))

	// The unique keys hold the new instance.
	rec := must(db.Find("person", "ssn", String("123-45-6789")))
	deepEqual(t, rec, moved)

	// The indexed key derived from the old zipcode is not removed; the old
	// instance stays reachable there.
	recs := must(db.FindAll("person", Where(Eq("country", String("US")), Eq("zipcode", String("12345")))))
	deepEqual(t, fieldValues(recs, "zipcode"), []string{"12345"})

	recs = must(db.FindAll("person", Where(Eq("country", String("US")), Eq("zipcode", String("99999")))))
	deepEqual(t, fieldValues(recs, "zipcode"), []string{"99999"})

	// Both copies surface on an unscoped scan: they are distinct instances.
	recs = must(db.FindAll("person", nil))
	deepEqual(t, len(recs), 2)

	// Deleting with the current instance leaves the stale key behind too.
	check(t, db.DeleteRecord("person", moved))
	deepEqual(t, keyStrings(t, db, "person"), []string{
		"person|country|US|zipcode|12345|123-45-6789",
	})
}

func TestUnknownTypeErrors(t *testing.T) {
	db := setup(t, personDef)

	wantUnknown := func(err error) {
		t.Helper()
		if !errors.Is(err, ErrUnknownType) {
			t.Errorf("** got %v, wanted ErrUnknownType", err)
		}
	}

	wantUnknown(db.Save("widget", alice()))
	wantUnknown(db.DeleteRecord("widget", alice()))
	wantUnknown(db.Delete("widget", "ssn", String("1")))
	_, err := db.Find("widget", "ssn", String("1"))
	wantUnknown(err)
	_, err = db.FindAll("widget", nil)
	wantUnknown(err)
}

func TestFindArgumentValidation(t *testing.T) {
	db := setup(t)

	// country is indexed but not unique.
	_, err := db.Find("person", "country", String("US"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("** got %v, wanted ErrInvalidArgument", err)
	}

	_, err = db.Find("person", "ssn", Value{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("** got %v, wanted ErrInvalidArgument", err)
	}
}

func TestSaveIncompleteRecord(t *testing.T) {
	db := setup(t)
	rec := alice()
	delete(rec, "zipcode")

	err := db.Save("person", rec)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("** got %v, wanted a FieldError", err)
	}
	deepEqual(t, fe.Field, "zipcode")

	// A failed save must not leave partial state behind.
	deepEqual(t, len(dumpState(t, db)), 0)
}

func TestStats(t *testing.T) {
	db := setup(t)
	check(t, db.Save("person", alice()))
	check(t, db.Save("invoice", invoice(1001, "alice@example.com")))

	stats := must(db.Stats())
	deepEqual(t, stats, []TypeStats{
		{TypeID: "invoice", Keys: 2},
		{TypeID: "person", Keys: 4},
	})
}

func TestBoltPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	reg := must(NewRegistry(personDef))

	db := must(Open(path, reg, Options{Logf: t.Logf, IsTesting: true}))
	check(t, db.Save("person", alice()))
	check(t, db.Close())

	db = must(Open(path, reg, Options{Logf: t.Logf, IsTesting: true}))
	defer db.Close()
	rec := must(db.Find("person", "ssn", String("123-45-6789")))
	deepEqual(t, rec, alice())
	deepEqual(t, len(keyStrings(t, db, "person")), 4)
}

func TestGlobalPrefixIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	reg := must(NewRegistry(personDef))
	openTenant := func(tenant string) *DB {
		return must(Open(path, reg, Options{
			Prefix:    Key{String(tenant)},
			Logf:      t.Logf,
			IsTesting: true,
		}))
	}

	db := openTenant("tenant-a")
	check(t, db.Save("person", alice()))
	check(t, db.Close())

	db = openTenant("tenant-b")
	deepEqual(t, len(must(db.FindAll("person", nil))), 0)
	check(t, db.Save("person", bob()))
	check(t, db.ClearAll())
	check(t, db.Close())

	// Tenant A's data survives tenant B's ClearAll.
	db = openTenant("tenant-a")
	defer db.Close()
	recs := must(db.FindAll("person", nil))
	deepEqual(t, fieldValues(recs, "firstname"), []string{"Alice"})
}
