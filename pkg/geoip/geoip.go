package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Region labels match the labels probe agents report, so pings from a
// geolocated fallback and pings from a real agent stay comparable.
const (
	RegionEurope       = "eu-central"
	RegionUnitedStates = "us-east"
	RegionAPAC         = "ap-southeast"
)

type GeoIP interface {
	Close() error
	Region(ip net.IP) string
	Lookup(ip net.IP) Info
}

type Geo struct {
	countryDB *geoip2.Reader // GeoLite2-Country.mmdb
	asnDB     *geoip2.Reader // GeoLite2-ASN.mmdb
}

func NewGeo(countryPath, asnPath string) (*Geo, error) {
	cdb, err := geoip2.Open(countryPath)
	if err != nil {
		return nil, err
	}

	var adb *geoip2.Reader
	if asnPath != "" {
		if adb, err = geoip2.Open(asnPath); err != nil {
			if cErr := cdb.Close(); cErr != nil {
				err = fmt.Errorf("%w, failed to close geoip db: %v", err, cErr)
			}

			return nil, err
		}
	}

	return &Geo{
		countryDB: cdb,
		asnDB:     adb,
	}, nil
}

func (g *Geo) Close() (err error) {
	if g.asnDB != nil {
		if cErr := g.asnDB.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close geoip db: %v", err, cErr)
		}
	}

	if g.countryDB != nil {
		if cErr := g.countryDB.Close(); cErr != nil {
			err = fmt.Errorf("%w, failed to close geoip db: %v", err, cErr)
		}
	}

	return err
}

type Info struct {
	ASN       int
	CC        string // ISO-2
	Continent string // EU, AS, NA, OC, AF, SA, AN
	Region    string
}

// Region maps a client address to the nearest region label. Unknown or
// missing addresses fall back to Europe.
func (g *Geo) Region(ip net.IP) string {
	return g.Lookup(ip).Region
}

func (g *Geo) Lookup(ip net.IP) Info {
	var out Info
	if ip == nil {
		out.Region = RegionEurope
		return out
	}

	if g.asnDB != nil {
		if rec, err := g.asnDB.ASN(ip); err == nil && rec != nil {
			out.ASN = int(rec.AutonomousSystemNumber)
		}
	}

	if g.countryDB != nil {
		if rec, err := g.countryDB.Country(ip); err == nil && rec != nil {
			out.CC = rec.Country.IsoCode
			if rec.Continent.Code != "" {
				out.Continent = rec.Continent.Code
			}
		}
	}

	switch strings.ToUpper(out.Continent) {
	case "NA", "SA":
		out.Region = RegionUnitedStates
	case "AS", "OC":
		out.Region = RegionAPAC
	default:
		out.Region = RegionEurope
	}

	return out
}
