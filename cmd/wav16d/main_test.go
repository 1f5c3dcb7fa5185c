package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/fumin/wav16/internal/container"
	"github.com/fumin/wav16/wav16"
)

// xorshift32 is a small deterministic PRNG for a reproducible PCM fixture.
type xorshift32 struct{ s uint32 }

func (x *xorshift32) next() uint32 {
	x.s ^= x.s << 13
	x.s ^= x.s >> 17
	x.s ^= x.s << 5
	return x.s
}

// writeFixtureContainer compresses pcm directly with wav16.Codec and
// internal/container, the same primitives wav16c's run uses, producing a
// .wv16 file wav16d's run can be pointed at without depending on the
// wav16c main package.
func writeFixtureContainer(t *testing.T, path string, pcm []byte, sampleRate uint32, optVar uint32) {
	t.Helper()
	var compressed bytes.Buffer
	codec := wav16.New(wav16.Options{OptVar: optVar})
	if err := codec.Compress(&compressed, bytes.NewReader(pcm)); err != nil {
		t.Fatal(err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	hdr := container.Header{
		NumChans:   2,
		SampleRate: sampleRate,
		ByteCount:  uint64(len(pcm)),
		OptVar:     optVar,
	}
	w := bufio.NewWriter(f)
	if err := container.Write(w, hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(compressed.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
}

// TestRunProducesPlayableWAV exercises wav16d's run end to end against a
// fixture .wv16 file, then verifies the resulting WAV file (read back via
// go-audio/wav, the same library wav16c reads with) holds exactly the
// original PCM samples.
func TestRunProducesPlayableWAV(t *testing.T) {
	dir := t.TempDir()
	wv16Path := filepath.Join(dir, "in.wv16")
	wavPath := filepath.Join(dir, "out.wav")

	rng := &xorshift32{s: 123}
	pcm := make([]byte, 4*1500)
	for i := 0; i < len(pcm); i += 4 {
		v := rng.next()
		pcm[i], pcm[i+1] = byte(v), byte(v>>8)
		pcm[i+2], pcm[i+3] = byte(v>>16), byte(v>>24)
	}
	writeFixtureContainer(t, wv16Path, pcm, 48000, 3)

	if err := run(wv16Path, wavPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(wavPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid WAV file")
	}
	dec.ReadInfo()
	if dec.NumChans != 2 {
		t.Errorf("NumChans = %d, want 2", dec.NumChans)
	}
	if dec.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", dec.SampleRate)
	}
	if dec.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if len(buf.Data) != len(pcm)/2 {
		t.Fatalf("decoded sample count = %d, want %d", len(buf.Data), len(pcm)/2)
	}
	for i, got := range buf.Data {
		want := int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
		if got != want {
			t.Fatalf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestRunRejectsBadContainer(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bad.wv16")
	wavPath := filepath.Join(dir, "out.wav")

	if err := os.WriteFile(badPath, []byte("not a wv16 file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := run(badPath, wavPath); err == nil {
		t.Fatal("expected an error for a malformed container")
	}
}
