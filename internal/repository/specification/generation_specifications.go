package specification

import "gorm.io/gorm"

// ByProcessType keeps generations of one process type.
type ByProcessType struct {
	ProcessType string
}

func (s ByProcessType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("process_type = ?", s.ProcessType)
}

// OmitXML skips the potentially large model column in list views.
type OmitXML struct{}

func (s OmitXML) Apply(db *gorm.DB) *gorm.DB {
	return db.Omit("bpmn_xml")
}
