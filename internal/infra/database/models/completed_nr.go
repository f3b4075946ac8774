package models

// CompletedNR is a row of the legacy view listing every name choice of a
// completed name request.
type CompletedNR struct {
	NrNum           *string `json:"nr_num" gorm:"column:nr_num;type:text"`
	ChoiceNumber    *int64  `json:"choice_number" gorm:"column:choice_number"`
	Name            *string `json:"name" gorm:"column:name;type:text"`
	CorpNum         *string `json:"corp_num" gorm:"column:corp_num;type:text"`
	NameInstanceID  *int64  `json:"name_instance_id" gorm:"column:name_instance_id;primaryKey"`
	RequestID       *int64  `json:"request_id" gorm:"column:request_id"`
	SubmitCount     *int64  `json:"submit_count" gorm:"column:submit_count"`
	RequestTypeCd   *string `json:"request_type_cd" gorm:"column:request_type_cd;type:text"`
	NameID          *int64  `json:"name_id" gorm:"column:name_id"`
	StartEventID    *int64  `json:"start_event_id" gorm:"column:start_event_id"`
	NameStateTypeCd *string `json:"name_state_type_cd" gorm:"column:name_state_type_cd;type:text"`
}

func (CompletedNR) TableName() string {
	return "completed_nr_vw"
}
