package usecase

import (
	"strconv"

	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/utils"
)

// ToNamesDocument maps a record onto the shape the names core expects:
// the record's columns prefixed with id = nr_num-choice_number.
func ToNamesDocument(record domain.SourceRecord) domain.Document {
	doc := domain.Document{}
	doc.Append("id", NamesDocumentID(record))
	doc.Append("name_instance_id", record.NameInstanceID)
	doc.Append("choice_number", record.ChoiceNumber)
	doc.Append("corp_num", record.CorpNumber)
	doc.Append("name", record.Name)
	doc.Append("nr_num", record.NameRequestNumber)
	doc.Append("request_id", record.RequestID)
	doc.Append("submit_count", record.SubmitCount)
	doc.Append("request_type_cd", record.RequestTypeCode)
	doc.Append("name_id", record.NameID)
	doc.Append("start_event_id", record.StartEventID)
	doc.Append("name_state_type_cd", record.NameStateCode)

	return Normalize(doc)
}

// IsConflictCandidate reports whether a name in the given state also belongs
// in the possible.conflicts core.
func IsConflictCandidate(statusCode string) bool {
	return statusCode == domain.NameStateApproved || statusCode == domain.NameStateConditionallyApproved
}

// ToConflictDocument maps a record onto the possible.conflicts shape. Every
// choice of a request shares the request number as id.
func ToConflictDocument(record domain.SourceRecord) domain.Document {
	doc := domain.Document{}
	doc.Append("id", record.NameRequestNumber)
	doc.Append("name", record.Name)
	doc.Append("state_type_cd", record.NameStateCode)
	doc.Append("source", domain.ConflictSource)

	return Normalize(doc)
}

func NamesDocumentID(record domain.SourceRecord) string {
	id := stringValue(record.NameRequestNumber) + "-"
	if record.ChoiceNumber != nil {
		id += strconv.FormatInt(*record.ChoiceNumber, 10)
	}
	return id
}

// Normalize replaces missing values with "" since the cores reject nulls.
// Strings that are NULL or empty become "", NULL numbers become "", and
// numbers that hold 0 stay 0.
func Normalize(doc domain.Document) domain.Document {
	for key, kv := range doc {
		doc[key] = utils.OrderedKV[any]{Value: normalizeValue(kv.Value), Order: kv.Order}
	}
	return doc
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case *string:
		if value == nil {
			return ""
		}
		return *value
	case *int64:
		if value == nil {
			return ""
		}
		return *value
	case *int:
		if value == nil {
			return ""
		}
		return *value
	default:
		return value
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
