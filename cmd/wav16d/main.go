// Command wav16d decompresses a .wv16 container back into a 16-bit stereo
// WAV file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/fumin/wav16/internal/container"
	"github.com/fumin/wav16/ringbuffer"
	"github.com/fumin/wav16/stream"
	"github.com/fumin/wav16/wav16"
)

const wavFormatPCM = 1

// queueDepth is the capacity of the staging FIFO between the codec's
// decoded byte stream and the WAV encoder's frame buffer.
const queueDepth = 1 << 14

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] in.wv16 out.wav\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("wav16d: %v", err)
	}
}

func run(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.Wrap(err, "wav16d: open input")
	}
	defer in.Close()
	// stream.Reader gives the decompress path the same Undo-capable source
	// wav16.Codec.Decompress's internal undoer assertion expects: once the
	// range decoder has consumed exactly the octets it needs, any
	// read-ahead bufio staged past the compressed stream is seeked back.
	r := stream.NewReader(in)

	hdr, err := container.Read(r)
	if err != nil {
		return errors.Wrap(err, "wav16d: read container header")
	}

	var pcm bytes.Buffer
	codec := wav16.New(wav16.Options{OptVar: hdr.OptVar})
	if err := codec.Decompress(&pcm, r, int64(hdr.ByteCount)); err != nil {
		return errors.Wrap(err, "wav16d: decompress")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "wav16d: create output")
	}
	defer out.Close()

	enc := wav.NewEncoder(out, int(hdr.SampleRate), 16, int(hdr.NumChans), wavFormatPCM)

	queue, err := ringbuffer.NewDeque[int16](queueDepth, 0)
	if err != nil {
		return errors.Wrap(err, "wav16d: allocate staging queue")
	}
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: int(hdr.NumChans), SampleRate: int(hdr.SampleRate)},
		Data:   make([]int, 4096),
	}

	for {
		lo, err1 := pcm.ReadByte()
		if err1 != nil {
			break
		}
		hi, err2 := pcm.ReadByte()
		if err2 != nil {
			break
		}
		sample := int16(uint16(lo) | uint16(hi)<<8)
		if err := queue.PushBack(sample); err != nil {
			return errors.Wrap(err, "wav16d: stage decoded sample")
		}
		if queue.Full() {
			if err := flushQueue(enc, buf, queue); err != nil {
				return err
			}
		}
	}
	if err := flushQueue(enc, buf, queue); err != nil {
		return err
	}
	// Close writes the finalized RIFF/data chunk sizes; its error is the
	// only signal that the trailing header write failed.
	return errors.Wrap(enc.Close(), "wav16d: close output")
}

// flushQueue drains every sample currently queued into buf and writes it
// through enc, chunking to buf's capacity.
func flushQueue(enc *wav.Encoder, buf *goaudio.IntBuffer, q *ringbuffer.Deque[int16]) error {
	for q.Size() > 0 {
		n := 0
		for n < len(buf.Data) && q.Size() > 0 {
			buf.Data[n] = int(q.Front())
			if err := q.PopFront(1); err != nil {
				return errors.Wrap(err, "wav16d: drain staging queue")
			}
			n++
		}
		buf.Data = buf.Data[:n]
		if err := enc.Write(buf); err != nil {
			return errors.Wrap(err, "wav16d: write PCM buffer")
		}
		buf.Data = buf.Data[:cap(buf.Data)]
	}
	return nil
}
