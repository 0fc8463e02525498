// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm,
// extended with gated memory units (LSTM-style cells) that evolved feed-forward networks can read from.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// All randomness, the innovation registry and the genome id counter live in an Engine, so
// runs seeded with the same config are reproducible and independent runs never share state.
// Genomes owned by a Population are frozen; clone one before mutating it.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//	engine, err := neat.NewEngine(config, nil)
//	if err != nil {
//		log.Fatalf("Error creating engine: %v", err)
//	}
//	seed, err := engine.NewSeedGenome(config.Run.NumInputs, config.Run.NumOutputs)
//	if err != nil {
//		log.Fatalf("Error creating seed genome: %v", err)
//	}
//	pop, err := neat.NewPopulation(engine, seed, config.Run.PopSize)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	for i := 0; i < 100; i++ {
//		if err := pop.Evaluate(fitness); err != nil {
//			log.Fatalf("Error evaluating generation: %v", err)
//		}
//		if pop, err = pop.Reproduce(); err != nil {
//			log.Fatalf("Error reproducing generation: %v", err)
//		}
//	}
//
// where fitness builds an nn.Network from each genome and scores its outputs.
package neat
