package server

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rorupuntou/World-IDle-sub000/internal/game"
)

// snapshotSchema guards the client-pushed save path: a snapshot must be
// structurally sound and every cost/count non-negative before it replaces
// session state. Balance plausibility is not checked here; the stored row is
// client-trusted and the schema only keeps junk out of the table.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["game", "stats", "producers"],
  "properties": {
    "game": {
      "type": "object",
      "properties": {
        "soft_currency": {"type": "number", "minimum": 0},
        "bonus_currency": {"type": "number", "minimum": 0},
        "click_base_value": {"type": "number", "minimum": 0},
        "permanent_boost_bonus": {"type": "number", "minimum": 0},
        "permanent_referral_boost": {"type": "number", "minimum": 0},
        "prestige_time_warp_count": {"type": "integer", "minimum": 0}
      }
    },
    "stats": {
      "type": "object",
      "properties": {
        "lifetime_earnings": {"type": "number", "minimum": 0},
        "lifetime_clicks": {"type": "integer", "minimum": 0},
        "production_rate": {"type": "number", "minimum": 0},
        "verified": {"type": "boolean"}
      }
    },
    "producers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer"},
          "owned": {"type": "integer", "minimum": 0},
          "unit_cost": {"type": "number", "minimum": 0}
        }
      }
    },
    "upgrades": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer"},
          "purchased": {"type": "boolean"}
        }
      }
    },
    "achievements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer"},
          "unlocked": {"type": "boolean"}
        }
      }
    }
  }
}`

var compiledSnapshotSchema = jsonschema.MustCompileString("snapshot.json", snapshotSchema)

func validateSnapshot(snap *game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := compiledSnapshotSchema.Validate(doc); err != nil {
		// The full validation tree is noisy; the first line names the failing
		// location, which is all the client needs.
		msg := err.Error()
		if i := strings.IndexByte(msg, '\n'); i > 0 {
			msg = msg[:i]
		}
		return &SnapshotValidationError{msg: msg}
	}
	return nil
}

type SnapshotValidationError struct {
	msg string
}

func (e *SnapshotValidationError) Error() string { return e.msg }
