package bframe

import (
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// GetJSON looks up path (gjson syntax, e.g. "user.name" or "items.0") in the JSON body
// of the message.
func GetJSON(msg []byte, path string) (gjson.Result, error) {
	body := Message(msg).Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.Wrap(ErrMalformedValue, "body is not valid JSON")
	}

	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return res, errors.Wrapf(ErrNotFound, "json path %q", path)
	}

	return res, nil
}
