package models

// TimeFormat is the layout used for Record.CreatedAt, stored as text.
const TimeFormat = "2006-01-02 15:04:05"

// Record is a stored QR code entry. Records are immutable once created:
// the lifecycle is insert, list, and bulk delete. There is no update or
// single-record delete.
type Record struct {
	// ID is the autoincrement identifier assigned by the store.
	// Strictly increasing, so ID order is insertion order.
	ID int64 `json:"id"`

	// Content is the full text payload encoded into the QR symbol,
	// including the share link. Set once at creation.
	Content string `json:"contenido"`

	// CreatedAt is the creation timestamp in TimeFormat, assigned by
	// the store at insert time.
	CreatedAt string `json:"fecha_creacion"`

	// Description is the free-text description shown on cards and in
	// the PDF caption.
	Description string `json:"descripcion"`

	// Personalization is optional free text; empty when the record has
	// no personalization.
	Personalization string `json:"personalizacion"`
}
