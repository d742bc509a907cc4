package checkpipeline

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a plain function to ProgressSink.
type FuncSink func(Event)

func (s FuncSink) OnEvent(evt Event) {
	if s != nil {
		s(evt)
	}
}
