// Package qr builds and parses the URL payload embedded in a table's QR
// code. The payload is a plain menu link; rendering the actual QR image is
// the frontend's job.
package qr

import (
	"errors"
	"net/url"
	"strings"
)

// ErrParse is returned for any payload that does not match the expected
// shape. Decode fails closed: it never returns a partially populated
// payload alongside a nil error.
var ErrParse = errors.New("malformed table payload")

// Payload identifies a table within a restaurant.
type Payload struct {
	RestaurantID string
	TableID      string
	TableNumber  string
}

// Encode builds "{base}/menu/{restaurantID}?table={tableNumber}&tableId={tableID}".
// base must be an absolute URL such as "https://dinetap.app".
func Encode(base string, p Payload) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || u.Host == "" {
		return "", errors.New("base must be an absolute URL")
	}
	if p.RestaurantID == "" || p.TableID == "" || p.TableNumber == "" {
		return "", errors.New("restaurant ID, table ID and table number are required")
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/menu/" + url.PathEscape(p.RestaurantID)
	q := url.Values{}
	q.Set("table", p.TableNumber)
	q.Set("tableId", p.TableID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Decode is the inverse of Encode. Any malformed input, wrong path shape
// or missing query parameter yields ErrParse.
func Decode(raw string) (Payload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Payload{}, ErrParse
	}
	if !u.IsAbs() || u.Host == "" {
		return Payload{}, ErrParse
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "menu" {
		return Payload{}, ErrParse
	}
	restaurantID, err := url.PathUnescape(parts[len(parts)-1])
	if err != nil || restaurantID == "" {
		return Payload{}, ErrParse
	}

	q := u.Query()
	tableNumber := q.Get("table")
	tableID := q.Get("tableId")
	if tableNumber == "" || tableID == "" {
		return Payload{}, ErrParse
	}

	return Payload{
		RestaurantID: restaurantID,
		TableID:      tableID,
		TableNumber:  tableNumber,
	}, nil
}
