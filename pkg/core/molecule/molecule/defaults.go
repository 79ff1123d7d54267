package molecule

import "github.com/scienceol/molbank/pkg/core/molecule"

const defaultDate = "2023-01-01"

func defaultMolecules() []*molecule.Molecule {
	return []*molecule.Molecule{
		{ID: "1", MoleculeName: "Aspirin", SmilesStructure: "CC(=O)OC1=CC=CC=C1C(O)=O", MolecularWeight: 180.16, CategoryUsage: "Pain reliever/NSAID", DateAdded: defaultDate},
		{ID: "2", MoleculeName: "Caffeine", SmilesStructure: "CN1C=NC2=C1C(=O)N(C(=O)N2C)C", MolecularWeight: 194.19, CategoryUsage: "Stimulant", DateAdded: defaultDate},
		{ID: "3", MoleculeName: "Benzene", SmilesStructure: "C1=CC=CC=C1", MolecularWeight: 78.11, CategoryUsage: "Industrial solvent", DateAdded: defaultDate},
		{ID: "4", MoleculeName: "Glucose", SmilesStructure: "C(C1C(C(C(C(O1)O)O)O)O)O", MolecularWeight: 180.16, CategoryUsage: "Energy source/sugar", DateAdded: defaultDate},
		{ID: "5", MoleculeName: "Penicillin", SmilesStructure: "CC1(C2C(C(C(O2)N1C(=O)COC(=O)C)C)S)C=O", MolecularWeight: 334.39, CategoryUsage: "Antibiotic", DateAdded: defaultDate},
		{ID: "6", MoleculeName: "Ibuprofen", SmilesStructure: "CC(C)CC1=CC=C(C=C1)C(C)C(=O)O", MolecularWeight: 206.28, CategoryUsage: "Pain reliever/NSAID", DateAdded: defaultDate},
		{ID: "7", MoleculeName: "Acetaminophen", SmilesStructure: "CC(=O)NC1=CC=C(O)C=C1", MolecularWeight: 151.16, CategoryUsage: "Pain reliever/Antipyretic", DateAdded: defaultDate},
		{ID: "8", MoleculeName: "Morphine", SmilesStructure: "CN1CCC23C4C1CC(C2C3O)OC5=CC=CC=C45", MolecularWeight: 285.34, CategoryUsage: "Pain reliever/Opiate", DateAdded: defaultDate},
		{ID: "9", MoleculeName: "Nicotine", SmilesStructure: "CN1CCCC1C2=CN=CC=C2", MolecularWeight: 162.23, CategoryUsage: "Stimulant", DateAdded: defaultDate},
		{ID: "10", MoleculeName: "Ethanol", SmilesStructure: "CCO", MolecularWeight: 46.07, CategoryUsage: "Alcohol/Disinfectant", DateAdded: defaultDate},
	}
}
