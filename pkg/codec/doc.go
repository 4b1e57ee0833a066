// ABOUTME: Streaming Speex decode package
// ABOUTME: Opens Ogg or WAVE Speex sources and reads decoded PCM in bounded chunks
// Package codec decodes Speex audio carried in Ogg pages or RIFF/WAVE chunks.
//
// A Stream is opened once per source, then read repeatedly. Each read decodes
// whole packets until roughly the requested number of PCM bytes has been
// produced, so a read may overshoot its budget by up to one packet.
//
// Example:
//
//	s, err := codec.OpenFile("voice.spx", codec.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	for {
//		buf, err := s.Read()
//		if err != nil {
//			log.Fatal(err)
//		}
//		if buf == nil {
//			break
//		}
//		play(buf.Data)
//	}
package codec
