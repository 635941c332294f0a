package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "host:port del servidor")
	idle := flag.Duration("idle", 3*time.Second, "silencio que da por terminada una respuesta")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		log.Fatalf("conectar %s: %v", u.String(), err)
	}
	defer conn.Close()

	if err := runChat(ctx, conn, os.Stdin, os.Stdout, *idle); err != nil {
		log.Fatal(err)
	}
}

// runChat imprime el saludo y luego, por cada línea de in, envía el mensaje y
// muestra los fragmentos a medida que llegan hasta que pasa idle sin recibir nada.
func runChat(ctx context.Context, conn *websocket.Conn, in io.Reader, out io.Writer, idle time.Duration) error {
	done := make(chan struct{})
	defer close(done)
	frames, readErr := readFrames(conn, done)

	greeting, ok := <-frames
	if !ok {
		return fmt.Errorf("leer saludo: %w", <-readErr)
	}
	fmt.Fprintf(out, "Tutor > %s\n", greeting)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "You > ")
		text, err := reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" && !strings.EqualFold(text, "salir") && !strings.EqualFold(text, "exit") {
			if closed := drainLate(frames, out); closed {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				return fmt.Errorf("enviar mensaje: %w", err)
			}
			if finished := printReply(ctx, frames, out, idle); finished {
				return nil
			}
		}
		if err != nil || strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

// readFrames entrega los mensajes de conn hasta que la lectura falla o se cierra done.
func readFrames(conn *websocket.Conn, done <-chan struct{}) (<-chan string, <-chan error) {
	frames := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- string(payload):
			case <-done:
				return
			}
		}
	}()
	return frames, readErr
}

// drainLate imprime aparte los fragmentos que llegaron después de cerrar la respuesta
// anterior, para no mezclarlos con la siguiente. Devuelve true si la conexión terminó.
func drainLate(frames <-chan string, out io.Writer) bool {
	var late strings.Builder
	defer func() {
		if late.Len() > 0 {
			fmt.Fprintf(out, "Tutor > %s\n", late.String())
		}
	}()
	for {
		select {
		case fragment, ok := <-frames:
			if !ok {
				return true
			}
			late.WriteString(fragment)
		default:
			return false
		}
	}
}

// printReply devuelve true si la conexión o el contexto terminaron.
func printReply(ctx context.Context, frames <-chan string, out io.Writer, idle time.Duration) bool {
	fmt.Fprint(out, "Tutor > ")
	defer fmt.Fprintln(out)

	timer := time.NewTimer(idle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return true
		case fragment, ok := <-frames:
			if !ok {
				return true
			}
			fmt.Fprint(out, fragment)
			timer.Reset(idle)
		case <-timer.C:
			return false
		}
	}
}
