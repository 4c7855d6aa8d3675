package models

type Project struct {
	ID   string `gorm:"primarykey;type:varchar(64)" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}

func (p Project) RecordID() string { return p.ID }
