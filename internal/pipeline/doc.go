// Package pipeline turns a directory of notebooks into two parallel
// artifact trees and publishes the rendered one.
//
// A run moves through a fixed sequence: ensure the output roots exist,
// enumerate documents in sorted order, convert each document to a script
// and then to executed markdown, and finally publish the markdown tree.
// Documents are processed one at a time; a failed conversion either
// halts the run or, under the continue policy, marks the document failed
// and moves on.
package pipeline
