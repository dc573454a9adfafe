// Package dictionary parses the small XML subset mapping (tag,num,tagEnd)
// triples to symbolic names, and provides the bidirectional lookups used
// to name and find structures in an event tree.
package dictionary

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Key identifies a dictionary entry by its expanded (tag, num, tagEnd)
// triple. TagEnd is 0 when the entry names a single tag rather than a
// range; HasNum is false when num was deferred with "%n".
type Key struct {
	Tag    uint16
	TagEnd uint16
	Num    uint8
	HasNum bool
}

// Entry is one fully expanded dictionary entry.
type Entry struct {
	Name string
	Key  Key
	Type dtype.Type // zero value if the entry did not specify a type
}

// Dictionary is the bidirectional mapping built by Parse.
type Dictionary struct {
	byName map[string]Entry
	byKey  map[Key]Entry
	// byNameHash indexes entries by the xxHash64 of their dotted name,
	// the same fast-ID technique the pack's metric-name lookup uses, so
	// EntryFromName on a hot path (e.g. re-resolving the same bank name
	// for every event in a stream) skips a full string compare against
	// every stored name before the final confirmation.
	byNameHash map[uint64]Entry
}

// nameID returns the xxHash64 of a dotted dictionary name.
func nameID(name string) uint64 { return xxhash.Sum64String(name) }

// NameFromTagNumType looks up the dotted name for an exact (tag,num) pair.
// hasNum distinguishes "num omitted" (deferred) lookups from num==0.
func (d *Dictionary) NameFromTagNumType(tag uint16, num uint8, hasNum bool) (string, bool) {
	for k, e := range d.byKey {
		if k.Tag <= tag && (k.TagEnd == 0 && k.Tag == tag || k.TagEnd != 0 && tag <= k.TagEnd) {
			if !k.HasNum || (hasNum && k.Num == num) {
				return e.Name, true
			}
		}
	}
	return "", false
}

// EntryFromName looks up the full entry for a dotted name. The hash index
// is consulted first; a hash hit is confirmed against the stored name
// before being trusted, so a 64-bit collision can never return the wrong
// entry.
func (d *Dictionary) EntryFromName(name string) (Entry, bool) {
	if e, ok := d.byNameHash[nameID(name)]; ok && e.Name == name {
		return e, true
	}
	e, ok := d.byName[name]
	return e, ok
}

// Lookup finds the entry whose expanded key matches (tag,num) exactly,
// equivalent to the testable property `lookup(tag,num) == t`.
func (d *Dictionary) Lookup(tag uint16, num uint8) (Entry, bool) {
	k := Key{Tag: tag, Num: num, HasNum: true}
	if e, ok := d.byKey[k]; ok {
		return e, true
	}
	for key, e := range d.byKey {
		if key.TagEnd != 0 && tag >= key.Tag && tag <= key.TagEnd && (!key.HasNum || key.Num == num) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns every expanded entry, for iteration/testing.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.byKey))
	for _, e := range d.byKey {
		out = append(out, e)
	}
	return out
}

func newDictionary() *Dictionary {
	return &Dictionary{byName: map[string]Entry{}, byKey: map[Key]Entry{}, byNameHash: map[uint64]Entry{}}
}

func (d *Dictionary) add(e Entry) error {
	if existing, ok := d.byKey[e.Key]; ok {
		return fmt.Errorf("%w: duplicate tag/num tuple %+v (already %q, new %q)", xerr.ErrDictionaryParse, e.Key, existing.Name, e.Name)
	}
	d.byKey[e.Key] = e
	d.byName[e.Name] = e
	d.byNameHash[nameID(e.Name)] = e
	return nil
}
