// Command framepipe drives the frame pipeline from the command line.
//
//	framepipe render --frames 60 --output demo.gif
//	framepipe config init
//	framepipe config show
//
// The render command feeds a generated animation through an encoder,
// retrying frames the encoder refuses while its queue is full, and prints a
// summary table once the GIF has been written.
package main
