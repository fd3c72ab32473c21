package mongo

import (
	"testing"

	"cleanroom/internal/migrations/mongo/validators"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBookingsIndexes_DocIDUnique(t *testing.T) {
	var found bool
	for _, idx := range BookingsIndexes {
		keys, ok := idx.Keys.(bson.D)
		if !ok || len(keys) != 1 || keys[0].Key != "docId" {
			continue
		}
		found = true
		if idx.Options == nil || idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Error("docId index must be unique")
		}
	}
	if !found {
		t.Fatal("no docId index defined")
	}
}

func TestBookingValidator_OnlyRequiresDocID(t *testing.T) {
	schema, ok := validators.BookingValidator["$jsonSchema"].(bson.M)
	if !ok {
		t.Fatal("validator has no $jsonSchema")
	}
	required, _ := schema["required"].([]string)
	if len(required) != 1 || required[0] != "docId" {
		t.Errorf("required = %v, want [docId]", required)
	}
	if schema["additionalProperties"] != true {
		t.Error("legacy fields must be allowed")
	}
}
