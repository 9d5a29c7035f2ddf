package recurrence

import (
	"strings"

	"github.com/samber/mo"

	"github.com/dailyflo/dailyflo/task"
)

// OccurrenceIDSeparator joins a base task id and a date key into a virtual
// occurrence id. Store-assigned ids are UUIDs, which never contain a colon,
// so the separator cannot appear inside a legitimate base id. A base id that
// does contain it is a defect at the persistence boundary, not a supported
// case.
const OccurrenceIDSeparator = "::"

// DecodedID is an occurrence id taken apart. DateKey is absent when the id
// belongs to a real task rather than a synthesized occurrence.
type DecodedID struct {
	BaseID  string
	DateKey mo.Option[task.DateKey]
}

// EncodeOccurrenceID builds the id of the virtual occurrence of the base
// task baseID on key. The result is never equal to baseID itself.
func EncodeOccurrenceID(baseID string, key task.DateKey) string {
	return baseID + OccurrenceIDSeparator + string(key)
}

// DecodeOccurrenceID splits an occurrence id back into its parts. It is
// total: an id without the separator, or with anything other than a valid
// date key after it, decodes to itself with no date key, so it is safe to
// call on any task id, recurring or not.
func DecodeOccurrenceID(id string) DecodedID {
	base, key, found := strings.Cut(id, OccurrenceIDSeparator)
	if !found || !task.DateKey(key).Valid() {
		return DecodedID{BaseID: id, DateKey: mo.None[task.DateKey]()}
	}
	return DecodedID{BaseID: base, DateKey: mo.Some(task.DateKey(key))}
}
