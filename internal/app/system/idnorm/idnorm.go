// Package idnorm converts the identifier encodings found across the
// collections into one canonical form.
//
// events stores club_id as an ObjectID while memberships, registrations
// and payments store it as a 24-character hex string. Every comparison or
// join between them goes through this package: Go-side values through
// Normalize/Hex, pipeline-side values through ToObjectIDExpr/ToHexExpr.
package idnorm

import (
	"fmt"
	"strings"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalize returns the canonical ObjectID for raw. Accepted shapes are a
// hex string (optionally wrapped as ObjectId("...")), a primitive.ObjectID
// or pointer to one, and extended JSON {"$oid": "..."}. Anything else,
// including the zero ObjectID, fails with apperr.ErrInvalidIdentifier.
func Normalize(raw any) (primitive.ObjectID, error) {
	switch v := raw.(type) {
	case primitive.ObjectID:
		if v.IsZero() {
			return primitive.NilObjectID, invalid(raw)
		}
		return v, nil
	case *primitive.ObjectID:
		if v == nil {
			return primitive.NilObjectID, invalid(raw)
		}
		return Normalize(*v)
	case string:
		return fromString(v)
	case *string:
		if v == nil {
			return primitive.NilObjectID, invalid(raw)
		}
		return fromString(*v)
	case bson.M:
		return fromExtJSON(map[string]any(v), raw)
	case map[string]any:
		return fromExtJSON(v, raw)
	case bson.D:
		if len(v) == 1 && v[0].Key == "$oid" {
			return fromExtJSON(map[string]any{"$oid": v[0].Value}, raw)
		}
	}
	return primitive.NilObjectID, invalid(raw)
}

// Hex returns the canonical string form of raw, as stored in
// string-keyed collections.
func Hex(raw any) (string, error) {
	oid, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

// NormalizeAll normalizes every element and fails on the first invalid one.
func NormalizeAll(raws []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raws))
	for _, r := range raws {
		oid, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// NormalizeValid normalizes every element and returns the invalid inputs
// separately instead of failing. Read paths use it to skip corrupt rows.
func NormalizeValid(raws []string) (valid []primitive.ObjectID, invalid []string) {
	valid = make([]primitive.ObjectID, 0, len(raws))
	for _, r := range raws {
		oid, err := Normalize(r)
		if err != nil {
			invalid = append(invalid, r)
			continue
		}
		valid = append(valid, oid)
	}
	return valid, invalid
}

// HexAll renders ids in their canonical string form.
func HexAll(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

// Either returns an $in filter that matches a field holding any of ids in
// either encoding. Used where legacy rows may carry the other encoding.
func Either(ids []primitive.ObjectID) bson.M {
	in := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		in = append(in, id, id.Hex())
	}
	return bson.M{"$in": in}
}

// ToObjectIDExpr is the aggregation expression that converts field (a
// "$path") to an ObjectID. Values that do not convert become null, so
// they never match a join instead of aborting the pipeline.
func ToObjectIDExpr(field string) bson.M {
	return bson.M{"$convert": bson.M{
		"input":   field,
		"to":      "objectId",
		"onError": nil,
		"onNull":  nil,
	}}
}

// ToHexExpr is the aggregation expression that renders field as a string.
// Applied to a string it is the identity.
func ToHexExpr(field string) bson.M {
	return bson.M{"$toString": field}
}

func fromString(s string) (primitive.ObjectID, error) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, `ObjectId("`) && strings.HasSuffix(t, `")`) {
		t = t[len(`ObjectId("`) : len(t)-2]
	}
	if len(t) != 24 {
		return primitive.NilObjectID, invalid(s)
	}
	oid, err := primitive.ObjectIDFromHex(strings.ToLower(t))
	if err != nil || oid.IsZero() {
		return primitive.NilObjectID, invalid(s)
	}
	return oid, nil
}

func fromExtJSON(m map[string]any, raw any) (primitive.ObjectID, error) {
	if len(m) != 1 {
		return primitive.NilObjectID, invalid(raw)
	}
	s, ok := m["$oid"].(string)
	if !ok {
		return primitive.NilObjectID, invalid(raw)
	}
	return fromString(s)
}

func invalid(raw any) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidIdentifier, raw)
}
