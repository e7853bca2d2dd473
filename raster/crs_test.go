package raster

import (
	"errors"
	"testing"
)

const wktWGS84Zone45N = `PROJCS["WGS 84 / UTM zone 45N",
    GEOGCS["WGS 84",
        DATUM["WGS_1984",
            SPHEROID["WGS 84",6378137,298.257223563,
                AUTHORITY["EPSG","7030"]],
            AUTHORITY["EPSG","6326"]],
        AUTHORITY["EPSG","4326"]],
    PROJECTION["Transverse_Mercator"],
    AUTHORITY["EPSG","32645"]]`

const wktWGS84Zone46NNoAuthority = `PROJCS["WGS 84 / UTM zone 46N",
    GEOGCS["WGS 84",
        DATUM["WGS_1984",
            SPHEROID["WGS 84",6378137,298.257223563]]],
    PROJECTION["Transverse_Mercator"]]`

const wktWGS84Zone19S = `PROJCS["WGS 84 / UTM zone 19S",
    GEOGCS["WGS 84",
        DATUM["WGS_1984",
            SPHEROID["WGS 84",6378137,298.257223563]]],
    PROJECTION["Transverse_Mercator"]]`

const wktNAD83Zone17N = `PROJCS["NAD83 / UTM zone 17N",
    GEOGCS["NAD83",
        DATUM["North_American_Datum_1983",
            SPHEROID["GRS 1980",6378137,298.257222101]]],
    PROJECTION["Transverse_Mercator"]]`

func TestParseCRS(t *testing.T) {
	cases := []struct {
		name string
		wkt  string
		want CRS
	}{
		{
			name: "authority code preferred",
			wkt:  wktWGS84Zone45N,
			want: CRS{Zone: 45, Hemisphere: "N", Datum: "WGS_1984", EPSG: 32645},
		},
		{
			name: "derived northern WGS84",
			wkt:  wktWGS84Zone46NNoAuthority,
			want: CRS{Zone: 46, Hemisphere: "N", Datum: "WGS_1984", EPSG: 32646},
		},
		{
			name: "derived southern WGS84",
			wkt:  wktWGS84Zone19S,
			want: CRS{Zone: 19, Hemisphere: "S", Datum: "WGS_1984", EPSG: 32719},
		},
		{
			name: "derived NAD83",
			wkt:  wktNAD83Zone17N,
			want: CRS{Zone: 17, Hemisphere: "N", Datum: "North_American_Datum_1983", EPSG: 26917},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCRS(tc.wkt)
			if err != nil {
				t.Fatalf("ParseCRS returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseCRS = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseCRSErrors(t *testing.T) {
	cases := []string{
		`GEOGCS["WGS 84",DATUM["WGS_1984"]]`, // geographic, no UTM zone
		`PROJCS["Mystery / UTM zone 12N",GEOGCS["Mystery",DATUM["Unknown_Datum"]]]`,
	}
	for _, wkt := range cases {
		if _, err := ParseCRS(wkt); !errors.Is(err, ErrCRSParse) {
			t.Fatalf("ParseCRS(%q) = %v, want ErrCRSParse", wkt, err)
		}
	}
}

func TestCRSString(t *testing.T) {
	crs := CRS{Zone: 45, Hemisphere: "N", EPSG: 32645}
	if got := crs.String(); got != "EPSG:32645" {
		t.Fatalf("unexpected CRS string: %s", got)
	}
}

func TestMajorityEPSG(t *testing.T) {
	got, err := MajorityEPSG([]int{32645, 32646, 32645, 32645, 32646})
	if err != nil {
		t.Fatalf("MajorityEPSG returned error: %v", err)
	}
	if got != 32645 {
		t.Fatalf("expected 32645, got %d", got)
	}
}

func TestMajorityEPSGTieBreaksLow(t *testing.T) {
	got, err := MajorityEPSG([]int{32646, 32645})
	if err != nil {
		t.Fatalf("MajorityEPSG returned error: %v", err)
	}
	if got != 32645 {
		t.Fatalf("expected tie to break toward 32645, got %d", got)
	}
}

func TestMajorityEPSGEmpty(t *testing.T) {
	if _, err := MajorityEPSG(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
