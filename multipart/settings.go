package multipart

// Settings bounds the resources a parser is willing to use, the same way
// httpparser/settings.go bounds a request parser: hard limits that turn
// into ErrBufferOverflow, and soft limits that only size initial buffers.
type Settings struct {
	// hard limits
	MaxHeaderBlockLength int
	MaxPartBodyLength    int64

	// soft limits
	InitialHeaderBufferLength int
}

const (
	maxHeaderBlockLength      = 1 << 20 // 1 MiB per header (name plus value); the block as a whole is not capped
	maxPartBodyLength         int64 = 1<<32 - 1
	initialHeaderBufferLength = 512
)

// PrepareSettings fills in defaults for zero-valued fields, exactly the
// pattern httpparser.PrepareSettings uses.
func PrepareSettings(settings Settings) Settings {
	if settings.MaxHeaderBlockLength < 1 {
		settings.MaxHeaderBlockLength = maxHeaderBlockLength
	}
	if settings.MaxPartBodyLength < 1 {
		settings.MaxPartBodyLength = maxPartBodyLength
	}
	if settings.InitialHeaderBufferLength < 1 {
		settings.InitialHeaderBufferLength = initialHeaderBufferLength
	}

	return settings
}
