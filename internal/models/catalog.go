package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VersionGroupID identifies the set of AssetFile rows that represent
// successive revisions of one logical document. A group has no row of its
// own; the identifier is the id of the row that opened the group.
type VersionGroupID string

func (g VersionGroupID) String() string { return string(g) }

func (g VersionGroupID) IsZero() bool { return g == "" }

// GroupOf returns the file's version group, treating a row without an
// explicit group as its own group of size 1.
func GroupOf(f *AssetFile) VersionGroupID {
	if !f.VersionGroupID.IsZero() {
		return f.VersionGroupID
	}
	return VersionGroupID(f.ID)
}

type BusinessUnit struct {
	Base
	Name        string    `gorm:"not null" json:"name" validate:"required,min=2"`
	Description string    `json:"description"`
	Products    []Product `gorm:"foreignKey:BusinessUnitID;references:ID" json:"products,omitempty"`
}

type Product struct {
	Base
	BusinessUnitID string        `gorm:"type:uuid;not null;index" json:"businessUnitId" validate:"required,uuid"`
	BusinessUnit   *BusinessUnit `json:"businessUnit,omitempty"`
	Name           string        `gorm:"not null" json:"name" validate:"required,min=2"`
	Description    string        `json:"description"`
	Folders        []Folder      `gorm:"foreignKey:ProductID;references:ID" json:"folders,omitempty"`
}

type Folder struct {
	Base
	ProductID   string      `gorm:"type:uuid;not null;index" json:"productId" validate:"required,uuid"`
	Product     *Product    `json:"product,omitempty"`
	Name        string      `gorm:"not null" json:"name" validate:"required,min=1"`
	Description string      `json:"description"`
	Files       []AssetFile `gorm:"foreignKey:FolderID;references:ID" json:"files,omitempty"`
}

// AssetFile is one revision of a document. Editing content always appends
// a new row to the file's version group; only metadata mutates in place.
type AssetFile struct {
	Base
	FolderID         string         `gorm:"type:uuid;not null;index" json:"folderId" validate:"required,uuid"`
	Folder           *Folder        `json:"folder,omitempty"`
	Title            string         `gorm:"not null;index" json:"title" validate:"required,min=1"`
	OriginalFileName string         `gorm:"not null" json:"originalFileName"`
	StoredFileName   string         `gorm:"not null" json:"-"`
	FileType         string         `gorm:"not null" json:"fileType"`
	FileSize         int64          `gorm:"not null" json:"fileSize"`
	Description      string         `json:"description"`
	UploadedBy       string         `gorm:"type:uuid" json:"uploadedBy"`
	AudienceLevel    AudienceLevel  `gorm:"not null;default:'INTERNAL'" json:"audienceLevel" validate:"required,audience_level"`
	IsArchived       bool           `gorm:"not null;default:false" json:"isArchived"`
	VersionGroupID   VersionGroupID `gorm:"type:uuid;index" json:"versionGroupId"`
	VersionNumber    int            `gorm:"not null;default:1" json:"versionNumber" validate:"omitempty,min=1"`
	Tags             datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`
	SignedURL        string         `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (f *AssetFile) AfterFind(tx *gorm.DB) error {
	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator != nil {
		url, err := generator.GetSignedURL(tx.Statement.Context, f.StoredFileName, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate signed URL: %w", err)
		}
		f.SignedURL = url
	}
	return nil
}
