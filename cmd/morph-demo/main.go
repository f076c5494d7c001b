// Command morph-demo is a gallery of shared-element transitions: a grid of
// projects and a row of team cards, each opening into an expanded view that
// is mirrored in a navigable location.
package main

func main() {
	Execute()
}
