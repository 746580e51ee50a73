package iplocate

import (
	"context"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/rotisserie/eris"
)

// Database resolves IP addresses offline against a MaxMind GeoLite2/GeoIP2
// City database.
type Database struct {
	reader *geoip2.Reader
}

// OpenDatabase opens the .mmdb file at path.
func OpenDatabase(path string) (*Database, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "iplocate: open database %s", path)
	}
	return &Database{reader: reader}, nil
}

// Lookup implements Client. The database cannot discover the caller's own
// address, so ip is required.
func (d *Database) Lookup(ctx context.Context, ip string) (*Result, error) {
	if ip == "" {
		return nil, eris.New("iplocate: database lookup needs an ip")
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, eris.Errorf("iplocate: invalid ip %q", ip)
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "iplocate: lookup")
	}

	rec, err := d.reader.City(addr)
	if err != nil {
		return nil, eris.Wrap(err, "iplocate: database lookup")
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return nil, eris.Errorf("iplocate: no location for %s", ip)
	}
	return &Result{
		Status:  "success",
		Query:   ip,
		City:    rec.City.Names["en"],
		Country: rec.Country.Names["en"],
		Lat:     rec.Location.Latitude,
		Lon:     rec.Location.Longitude,
	}, nil
}

// Close releases the database.
func (d *Database) Close() error {
	return d.reader.Close()
}
