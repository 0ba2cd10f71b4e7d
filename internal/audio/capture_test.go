package audio

import "testing"

func TestFirstChannelMonoCopies(t *testing.T) {
	input := []float32{0.1, 0.2, 0.3, 0.4}
	got := firstChannel(input, 1)

	if len(got) != len(input) {
		t.Fatalf("expected %d samples, got %d", len(input), len(got))
	}
	for i := range input {
		if got[i] != input[i] {
			t.Fatalf("sample %d mismatch: expected %f, got %f", i, input[i], got[i])
		}
	}
	if &got[0] == &input[0] {
		t.Fatal("mono result must be copied, the callback buffer is reused")
	}
}

func TestFirstChannelStereo(t *testing.T) {
	input := []float32{
		0.0, 1.0,
		0.5, 0.6,
		1.0, 0.0,
		-0.5, 0.5,
	}
	expected := []float32{0.0, 0.5, 1.0, -0.5}

	got := firstChannel(input, 2)
	if len(got) != len(expected) {
		t.Fatalf("expected %d frames, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("frame %d mismatch: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestFirstChannelMoreChannels(t *testing.T) {
	input := []float32{
		1, 3, 5,
		2, 4, 6,
	}
	expected := []float32{1, 2}

	got := firstChannel(input, 3)
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("frame %d mismatch: expected %f, got %f", i, expected[i], got[i])
		}
	}
}

func TestIsLoopbackName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"CABLE Output (VB-Audio Virtual Cable)", true},
		{"Stereo Mix (Realtek Audio)", true},
		{"BlackHole 2ch", true},
		{"Monitor of Built-in Audio", true},
		{"MacBook Pro Microphone", false},
		{"USB Headset", false},
	}
	for _, c := range cases {
		if got := isLoopbackName(c.name); got != c.want {
			t.Errorf("isLoopbackName(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
