package http

import (
	"net/http"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const contentTypeGeoJSON = "application/geo+json"

// featureCollection renders locations as point features. Records without
// coordinates are omitted.
func featureCollection(locs []domain.MonitoringLocation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range locs {
		l := &locs[i]
		if l.DecLatVa == nil || l.DecLongVa == nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{l.DecLongVa.InexactFloat64(), l.DecLatVa.InexactFloat64()})
		f.ID = l.ID.String()
		f.Properties["agency_cd"] = l.AgencyCode
		f.Properties["site_no"] = l.SiteNo
		f.Properties["site_name"] = l.SiteName
		f.Properties["site_type"] = string(l.SiteType)
		f.Properties["nat_aqfr_cd"] = l.NatAqfrCode
		f.Properties["local_aquifer_name"] = l.LocalAquiferName
		f.Properties["wl_sn_flag"] = l.WLSnFlag
		f.Properties["qw_sn_flag"] = l.QWSnFlag
		f.Properties["link"] = l.Link
		fc.Append(f)
	}
	return fc
}

func writeGeoJSON(w http.ResponseWriter, locs []domain.MonitoringLocation) {
	body, err := featureCollection(locs).MarshalJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
