package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestInstructionsMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Instructions
		want string
	}{
		{"steps", StepList([]InstructionStep{{Number: 1, Instruction: "Boil water"}}), `[{"number":1,"instruction":"Boil water"}]`},
		{"nil steps", Instructions{}, `[]`},
		{"placeholder", Placeholder(NoteNoInstructions), `"No instructions available."`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInstructionsUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Instructions
		wantErr bool
	}{
		{"steps", `[{"number":1,"instruction":"Boil water"},{"number":2,"instruction":"Add pasta"}]`,
			StepList([]InstructionStep{{1, "Boil water"}, {2, "Add pasta"}}), false},
		{"empty array", ` [] `, Instructions{}, false},
		{"placeholder", `"Error fetching instructions."`, Placeholder(NoteFetchFailed), false},
		{"null", `null`, Instructions{}, false},
		{"number", `42`, Instructions{}, true},
		{"object", `{"steps":[]}`, Instructions{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Instructions
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHydratedRecipeJSON(t *testing.T) {
	recipes := []HydratedRecipe{
		{ID: 1, Title: "Pasta Bolognese", Instructions: StepList([]InstructionStep{{1, "Boil water"}})},
		{ID: 2, Title: "Pasta Alfredo", Instructions: Placeholder(NoteNoInstructions)},
	}

	data, err := json.Marshal(recipes)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"id":1,"title":"Pasta Bolognese","instructions":[{"number":1,"instruction":"Boil water"}]},` +
		`{"id":2,"title":"Pasta Alfredo","instructions":"No instructions available."}]`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	var back []HydratedRecipe
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, recipes) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestStepListEmptyRoundTrip(t *testing.T) {
	for _, steps := range [][]InstructionStep{nil, {}} {
		in := StepList(steps)
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Instructions
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(back, in) {
			t.Fatalf("round trip of %#v gave %#v", in, back)
		}
	}
}
