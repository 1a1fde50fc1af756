// Package transform contains the stateless byte transformations applied by
// the data channel. A transformation never changes the length of its input.
package transform
