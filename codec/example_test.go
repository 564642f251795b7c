package codec_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/absfs/cspace/codec"
)

func Example_basic() {
	voxels := bytes.Repeat([]byte{0, 0, 0, 1, 4}, 1000)

	blob, err := codec.Compress(voxels)
	if err != nil {
		log.Fatal(err)
	}

	out, err := codec.Decompress(blob)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(out), bytes.Equal(out, voxels))
	// Output: 5000 true
}

func Example_algorithms() {
	c, err := codec.New(codec.FastestConfig())
	if err != nil {
		log.Fatal(err)
	}

	blob, err := c.Compress([]byte("configuration space"))
	if err != nil {
		log.Fatal(err)
	}

	algo, _ := codec.DetectBlobAlgorithm(blob)
	fmt.Println(algo)
	// Output: lz4
}
