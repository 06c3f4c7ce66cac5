package errors

import "testing"

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		v       int
		wantErr bool
	}{
		{"lower bound", 2, false},
		{"upper bound", 100, false},
		{"inside", 24, false},
		{"below", 1, true},
		{"above", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("colors", tt.v, 2, 100)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%d) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateRange(%d) code = %v, want %v", tt.v, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateThreadID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "310", false},
		{"blanc", "B5200", false},
		{"named", "Ecru", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 40)), true},
		{"control char", "31\x010", true},
		{"newline", "310\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreadID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateThreadID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		ext     string
		wantErr bool
	}{
		{"png", "out/pattern.png", "png", false},
		{"upper ext", "pattern.PNG", "png", false},
		{"any ext", "pattern.bin", "", false},

		{"empty", "", "png", true},
		{"null byte", "pat\x00tern.png", "png", true},
		{"wrong ext", "pattern.svg", "png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q, %q) error = %v, wantErr %v", tt.path, tt.ext, err, tt.wantErr)
			}
		})
	}
}
