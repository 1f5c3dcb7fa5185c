package container

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	want := Header{
		NumChans:   2,
		SampleRate: 44100,
		ByteCount:  123456789,
		OptVar:     7,
	}
	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Read() = %+v, want %+v", got, want)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("nope")
	buf.Write(make([]byte, 20))
	if _, err := Read(buf); err != ErrBadMagic {
		t.Fatalf("Read() error = %v, want ErrBadMagic", err)
	}
}

func TestReadRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(99)
	buf.Write(make([]byte, 20))
	if _, err := Read(&buf); err != ErrBadVersion {
		t.Fatalf("Read() error = %v, want ErrBadVersion", err)
	}
}
