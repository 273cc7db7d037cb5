package bind_group_provider

// BufferWrite describes a queued upload into the buffer at Binding on Provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
