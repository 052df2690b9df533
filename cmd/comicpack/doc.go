// Command comicpack turns directories of numbered page images into comic book
// archives.
//
// Each directory passed to "comicpack pack" has its pages sorted in natural
// order, renamed in place to zero-padded canonical names, and written to
// "<dir>.cbz" beside it (or "<dir>.cb7" through 7-Zip). Pages are stored or
// deflated individually, whichever is smaller.
//
// Other commands: "check" runs the environment preflight, "verify" reads an
// archive back, "history" lists past runs, and "config" creates or validates
// the TOML configuration.
package main
