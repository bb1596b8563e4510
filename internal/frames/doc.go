// Package frames samples a recording into timestamped still images.
package frames
