package relational

import (
	"time"

	"gorm.io/datatypes"
)

type documentRow struct {
	Id         string `gorm:"primaryKey"`
	BrandId    string `gorm:"index;not null"`
	Name       string
	Content    string `gorm:"not null"`
	Status     string `gorm:"index;not null"`
	ChunkCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

type brandRow struct {
	Id        string `gorm:"primaryKey"`
	OwnerId   string `gorm:"index;not null"`
	Name      string
	Profile   datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (brandRow) TableName() string { return "brands" }

type memoryFactRow struct {
	Id        string `gorm:"primaryKey"`
	BrandId   string `gorm:"index;not null"`
	Position  int
	Fact      string `gorm:"not null"`
	CreatedAt time.Time
}

func (memoryFactRow) TableName() string { return "memory_facts" }
