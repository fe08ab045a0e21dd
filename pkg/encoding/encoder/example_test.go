package encoder_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnykmshr/framepipe/pkg/encoding/encoder"
)

func Example() {
	enc, err := encoder.New()
	if err != nil {
		fmt.Println(err)
		return
	}

	pixels := make([]byte, 4*4*4)
	for i := 0; i < 3; i++ {
		ok, err := enc.SubmitFrame(pixels, 4, 4, 10)
		fmt.Println(ok, err)
	}

	completion, _ := enc.Close()
	locator, err := completion.Wait(context.Background())
	fmt.Println(strings.HasPrefix(locator, "blob:"), err)
	fmt.Println(enc.State())
	<-enc.Done()

	// Output:
	// true <nil>
	// true <nil>
	// true <nil>
	// true <nil>
	// finished
}

func Example_noFrames() {
	enc, _ := encoder.New()
	completion, _ := enc.Close()

	_, err := completion.Wait(context.Background())
	fmt.Println(err)
	<-enc.Done()

	// Output:
	// encoding failure: no frames
}
