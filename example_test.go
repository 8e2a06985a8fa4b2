package yloop_test

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-yloop"
)

func ExampleLoop_PostDelayed() {
	loop, err := yloop.New()
	if err != nil {
		panic(err)
	}
	defer loop.Close()

	show := func(data any) { fmt.Println(data) }

	_ = loop.PostDelayed(20*time.Millisecond, show, "world")
	_ = loop.PostDelayed(10*time.Millisecond, show, "hello")
	_ = loop.PostDelayed(30*time.Millisecond, show, "cancelled")
	loop.CancelDelayed(yloop.AnyDelay, show, "cancelled")

	if err := loop.Run(); err != nil {
		panic(err)
	}

	//output:
	//hello
	//world
}

func ExampleInit() {
	done := make(chan struct{})
	go func() {
		defer close(done)

		loop, err := yloop.Init()
		if err != nil {
			panic(err)
		}
		defer yloop.Destroy()

		_ = yloop.PostDelayed(time.Millisecond, func(data any) {
			fmt.Println("fired on", data)
			yloop.Exit()
		}, "own loop")

		if err := yloop.Run(); err != nil {
			panic(err)
		}
		fmt.Println(yloop.Current() == loop)
	}()
	<-done

	//output:
	//fired on own loop
	//true
}
