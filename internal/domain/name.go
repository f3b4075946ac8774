package domain

import "github.com/totegamma/solr-feeder/internal/utils"

// SourceRecord is one name choice of a completed name request as read from
// the legacy database. Every column is nullable there, so is every field here.
type SourceRecord struct {
	NameRequestNumber *string
	ChoiceNumber      *int64
	Name              *string
	CorpNumber        *string
	NameInstanceID    *int64
	RequestID         *int64
	SubmitCount       *int64
	RequestTypeCode   *string
	NameID            *int64
	StartEventID      *int64
	NameStateCode     *string
}

// Document is a payload for an index core. Keys keep insertion order when
// serialized so identical records always produce identical bytes.
type Document = utils.OrderedKVMap[any]
