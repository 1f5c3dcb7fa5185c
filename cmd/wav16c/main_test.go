package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
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

func writeFixtureWAV(t *testing.T, path string, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 2, SampleRate: 44100},
		Data:   samples,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestRunProducesDecodableContainer exercises wav16c's run end to end
// against an in-memory-fixture WAV file, then verifies the resulting .wv16
// container decodes (via internal/container and wav16.Codec directly, the
// same primitives wav16d uses) back to the original PCM octets.
func TestRunProducesDecodableContainer(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "in.wav")
	wv16Path := filepath.Join(dir, "out.wv16")

	rng := &xorshift32{s: 99}
	samples := make([]int, 2*2000)
	for i := range samples {
		samples[i] = int(int16(rng.next()))
	}
	writeFixtureWAV(t, wavPath, samples)

	if err := run(wavPath, wv16Path, 7); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(wv16Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	br := bufio.NewReader(f)

	hdr, err := container.Read(br)
	if err != nil {
		t.Fatalf("container.Read: %v", err)
	}
	if hdr.NumChans != 2 {
		t.Errorf("NumChans = %d, want 2", hdr.NumChans)
	}
	if hdr.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", hdr.SampleRate)
	}
	if hdr.OptVar != 7 {
		t.Errorf("OptVar = %d, want 7", hdr.OptVar)
	}
	wantByteCount := uint64(len(samples) * 2)
	if hdr.ByteCount != wantByteCount {
		t.Fatalf("ByteCount = %d, want %d", hdr.ByteCount, wantByteCount)
	}

	var pcm bytes.Buffer
	codec := wav16.New(wav16.Options{OptVar: hdr.OptVar})
	if err := codec.Decompress(&pcm, br, int64(hdr.ByteCount)); err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	want := make([]byte, 0, wantByteCount)
	for _, s := range samples {
		v := uint16(int16(s))
		want = append(want, byte(v), byte(v>>8))
	}
	if !bytes.Equal(pcm.Bytes(), want) {
		t.Fatalf("decompressed PCM does not match fixture: got %d bytes, want %d bytes", pcm.Len(), len(want))
	}
}

func TestRunRejectsMonoInput(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "mono.wav")
	wv16Path := filepath.Join(dir, "out.wv16")

	f, err := os.Create(wavPath)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:   []int{1, 2, 3, 4},
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := run(wavPath, wv16Path, 0); err == nil {
		t.Fatal("expected an error for mono input")
	}
}
