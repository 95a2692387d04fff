package registry

// Bulk file column positions. The upload layout has 39 columns; the
// download layout omits colLocalAquiferCode and has 38.
const (
	colAgency = iota
	colSiteNo
	colSiteName
	colLat
	colLong
	colHorzDatum
	colHorzMethod
	colHorzAcy
	colAlt
	colAltUnits
	colAltDatum
	colAltMethod
	colAltAcy
	colNatAqfr
	colLocalAquiferName
	colLocalAquiferCode
	colCountry
	colState
	colCounty
	colWellDepth
	colWellDepthUnits
	colSiteType
	colAqfrType
	colDisplayFlag
	colQWSnFlag
	colQWBaselineFlag
	colQWWellChars
	colQWWellType
	colQWWellPurpose
	colQWWellPurposeNotes
	colQWNetworkName
	colWLSnFlag
	colWLBaselineFlag
	colWLWellChars
	colWLWellType
	colWLWellPurpose
	colWLWellPurposeNotes
	colWLNetworkName
	colLink

	uploadColumns
)

// uploadHeader names the columns of a bulk upload file, in order.
var uploadHeader = [uploadColumns]string{
	colAgency:             "AGENCY_CD",
	colSiteNo:             "SITE_NO",
	colSiteName:           "SITE_NAME",
	colLat:                "DEC_LAT_VA",
	colLong:               "DEC_LONG_VA",
	colHorzDatum:          "HORZ_DATUM",
	colHorzMethod:         "HORZ_METHOD",
	colHorzAcy:            "HORZ_ACY",
	colAlt:                "ALT_VA",
	colAltUnits:           "ALT_UNITS",
	colAltDatum:           "ALT_DATUM_CD",
	colAltMethod:          "ALT_METHOD",
	colAltAcy:             "ALT_ACY",
	colNatAqfr:            "NAT_AQUIFER_CD",
	colLocalAquiferName:   "LOCAL_AQUIFER_NAME",
	colLocalAquiferCode:   "LOCAL_AQUIFER_CD",
	colCountry:            "COUNTRY",
	colState:              "STATE",
	colCounty:             "COUNTY",
	colWellDepth:          "WELL_DEPTH",
	colWellDepthUnits:     "WELL_DEPTH_UNITS",
	colSiteType:           "SITE_TYPE",
	colAqfrType:           "AQFR_TYPE",
	colDisplayFlag:        "DISPLAY_FLAG",
	colQWSnFlag:           "QW_SN_FLAG",
	colQWBaselineFlag:     "QW_BASELINE_FLAG",
	colQWWellChars:        "QW_WELL_CHARS",
	colQWWellType:         "QW_WELL_TYPE",
	colQWWellPurpose:      "QW_WELL_PURPOSE",
	colQWWellPurposeNotes: "QW_WELL_PURPOSE_NOTES",
	colQWNetworkName:      "QW_NETWORK_NAME",
	colWLSnFlag:           "WL_SN_FLAG",
	colWLBaselineFlag:     "WL_BASELINE_FLAG",
	colWLWellChars:        "WL_WELL_CHARS",
	colWLWellType:         "WL_WELL_TYPE",
	colWLWellPurpose:      "WL_WELL_PURPOSE",
	colWLWellPurposeNotes: "WL_WELL_PURPOSE_NOTES",
	colWLNetworkName:      "WL_NETWORK_NAME",
	colLink:               "LINK",
}

// Layout selects the export column set.
type Layout string

const (
	// LayoutDownload is the 38 column export.
	LayoutDownload Layout = "download"
	// LayoutUpload matches the bulk upload file so an export can be re-ingested.
	LayoutUpload Layout = "upload"
)

// ParseLayout defaults to LayoutDownload.
func ParseLayout(s string) Layout {
	if Layout(s) == LayoutUpload {
		return LayoutUpload
	}
	return LayoutDownload
}

// Header returns the header row of the layout.
func (l Layout) Header() []string {
	out := make([]string, 0, uploadColumns)
	for i, name := range uploadHeader {
		if i == colLocalAquiferCode && l != LayoutUpload {
			continue
		}
		out = append(out, name)
	}
	return out
}

// project drops the columns the layout does not carry from a full row.
func (l Layout) project(row []string) []string {
	if l == LayoutUpload {
		return row
	}
	return append(row[:colLocalAquiferCode:colLocalAquiferCode], row[colLocalAquiferCode+1:]...)
}
