package services

import (
	"regexp"
	"strings"
	"time"

	"nyc_buildings/identity"
	"nyc_buildings/models"
)

// AssembleInput carries everything gathered during one scrape session.
type AssembleInput struct {
	SourceURL   string
	RetrievedAt time.Time
	Overview    models.OverviewFields
	Violations  models.ViolationFields
	Footprint   *string
}

// Assemble merges the per-view results into a BuildingRecord. When the
// overview has no address the one derived from the URL is used, so the
// address is always set (possibly to identity.UnknownAddress).
func Assemble(in AssembleInput) models.BuildingRecord {
	overview := in.Overview
	if overview.Address == nil || strings.TrimSpace(*overview.Address) == "" {
		overview.Set(models.FieldAddress, identity.AddressFromURL(in.SourceURL))
	}

	return models.BuildingRecord{
		SourceURL:      in.SourceURL,
		RetrievedAt:    in.RetrievedAt,
		Overview:       overview,
		Violations:     in.Violations,
		FootprintImage: in.Footprint,
	}
}

var (
	unsafeChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separatorRun = regexp.MustCompile(`[-\s]+`)
)

// FileID turns an address into a file-system-safe identifier, e.g.
// "110 West 57 Street 10019" -> "110_West_57_Street_10019". Addresses with
// nothing usable fall back to building_YYYYMMDD_HHMMSS.
func FileID(address string, at time.Time) string {
	id := unsafeChars.ReplaceAllString(address, "")
	id = separatorRun.ReplaceAllString(id, "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return "building_" + at.Format("20060102_150405")
	}
	return id
}

// RecordFileID is FileID applied to the record's address and retrieval time.
func RecordFileID(rec models.BuildingRecord) string {
	addr := ""
	if rec.Overview.Address != nil {
		addr = *rec.Overview.Address
	}
	return FileID(addr, rec.RetrievedAt)
}
