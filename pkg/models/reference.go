package models

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Reference points at a catalog entity either by its external id or by its
// surrogate id. On the wire an external id is a JSON number and a surrogate
// id is a 24-hex string.
type Reference struct {
	external   int
	surrogate  bson.ObjectID
	isExternal bool
}

func ExternalRef(id int) Reference {
	return Reference{external: id, isExternal: true}
}

func SurrogateRef(id bson.ObjectID) Reference {
	return Reference{surrogate: id}
}

// ParseReference accepts a decimal external id or a 24-hex surrogate id.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, fmt.Errorf("reference can not be empty")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return ExternalRef(n), nil
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("reference %q must be an integer or a valid ObjectId", raw)
	}
	return SurrogateRef(id), nil
}

func (r Reference) IsExternal() bool { return r.isExternal }

func (r Reference) External() int { return r.external }

func (r Reference) Surrogate() bson.ObjectID { return r.surrogate }

func (r Reference) IsZero() bool {
	return !r.isExternal && r.surrogate.IsZero()
}

// Value is the form used in error details: int for external ids, hex
// string for surrogate ids.
func (r Reference) Value() any {
	if r.isExternal {
		return r.external
	}
	return r.surrogate.Hex()
}

func (r Reference) String() string {
	if r.isExternal {
		return strconv.Itoa(r.external)
	}
	return r.surrogate.Hex()
}

// CompareReferences orders external ids numerically before surrogate ids,
// which sort by hex.
func CompareReferences(a, b Reference) int {
	switch {
	case a.isExternal && !b.isExternal:
		return -1
	case !a.isExternal && b.isExternal:
		return 1
	case a.isExternal:
		return cmp.Compare(a.external, b.external)
	default:
		return cmp.Compare(a.surrogate.Hex(), b.surrogate.Hex())
	}
}

func (r Reference) MarshalJSON() ([]byte, error) {
	if r.isExternal {
		return []byte(strconv.Itoa(r.external)), nil
	}
	return json.Marshal(r.surrogate.Hex())
}

func (r *Reference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("reference can not be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(s)
		if err != nil {
			return fmt.Errorf("reference %q is not a valid ObjectId", s)
		}
		*r = SurrogateRef(id)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reference must be an integer or an ObjectId string: %w", err)
	}
	*r = ExternalRef(n)
	return nil
}
