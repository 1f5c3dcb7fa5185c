// Command wav16c compresses a 16-bit stereo WAV file into a .wv16
// container: a small header (internal/container) followed by the raw
// range-coded stream wav16.Codec produces.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/fumin/wav16/internal/container"
	"github.com/fumin/wav16/ringbuffer"
	"github.com/fumin/wav16/wav16"
)

var optVar = flag.Uint("optvar", 0, "reserved tuning parameter, must round-trip unchanged")

// queueDepth is the capacity of the staging FIFO between the WAV decoder's
// frame buffer and the byte stream fed to the codec. A power of two, as
// ringbuffer.Deque requires.
const queueDepth = 1 << 14

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] in.wav out.wv16\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(flag.Arg(0), flag.Arg(1), uint32(*optVar)); err != nil {
		log.Fatalf("wav16c: %v", err)
	}
}

func run(inPath, outPath string, optVar uint32) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.Wrap(err, "wav16c: open input")
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return errors.Errorf("wav16c: %s is not a valid WAV file", inPath)
	}
	dec.ReadInfo()
	if dec.NumChans != 2 {
		return errors.Errorf("wav16c: only stereo input is supported, got %d channels", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		return errors.Errorf("wav16c: only 16-bit input is supported, got %d bits", dec.BitDepth)
	}

	queue, err := ringbuffer.NewDeque[int16](queueDepth, 0)
	if err != nil {
		return errors.Wrap(err, "wav16c: allocate staging queue")
	}

	var pcm bytes.Buffer
	buf := &goaudio.IntBuffer{
		Format: dec.Format(),
		Data:   make([]int, 4096),
	}
	var byteCount uint64
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "wav16c: decode PCM")
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			if queue.Full() {
				drainQueue(&pcm, queue, queue.Size())
			}
			if err := queue.PushBack(int16(buf.Data[i])); err != nil {
				return errors.Wrap(err, "wav16c: stage decoded sample")
			}
		}
		if err != nil {
			break
		}
	}
	drainQueue(&pcm, queue, queue.Size())
	byteCount = uint64(pcm.Len())

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "wav16c: create output")
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	hdr := container.Header{
		NumChans:   uint8(dec.NumChans),
		SampleRate: dec.SampleRate,
		ByteCount:  byteCount,
		OptVar:     optVar,
	}
	if err := container.Write(w, hdr); err != nil {
		return errors.Wrap(err, "wav16c: write container header")
	}

	codec := wav16.New(wav16.Options{OptVar: optVar})
	if err := codec.Compress(w, &pcm); err != nil {
		return errors.Wrap(err, "wav16c: compress")
	}
	return errors.Wrap(w.Flush(), "wav16c: flush output")
}

// drainQueue pops count samples from q, little-endian-encoding each into
// dst as the codec's raw octet stream expects.
func drainQueue(dst *bytes.Buffer, q *ringbuffer.Deque[int16], count uint64) {
	for i := uint64(0); i < count; i++ {
		s := q.Front()
		dst.WriteByte(byte(s))
		dst.WriteByte(byte(s >> 8))
		q.PopFront(1)
	}
}
