// Package ass compiles timed caption segments and a resolved style into an
// Advanced SubStation Alpha (ASS) subtitle document suitable for ffmpeg's
// subtitles filter.
//
// The package is a set of total leaf codecs (timestamp, text escaping, packed
// colours) plus the document builder, which is the first layer that can fail:
// it rejects input whose cues are all empty. The document's PlayResX/PlayResY
// header must equal the probed source resolution, because every cue carries an
// absolute \pos override expressed in that coordinate space.
package ass
