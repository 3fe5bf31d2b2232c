// Package stage implements the transform stages of a thermoflow pipeline.
//
// A stage is a pull-driven adaptor over an upstream producer: it consumes
// values from its upstream one at a time and produces a transformed sequence
// through Next. Stages are composed into a linear chain by the pipeline
// assembler; each stage holds its upstream by interface reference and owns
// its mutable state exclusively.
//
// All stages fuse on upstream exhaustion: the first time an upstream pull
// yields nothing the stage stops producing and never pulls upstream again.
//
// Stage construction goes through Spec, a tagged description (kind plus
// parameters) that is serializable to YAML and validated exhaustively at
// assembly time. An optional Emitter attached at construction reports the
// stage's state snapshot and produced value after every pull, feeding the
// monitor hub.
package stage
